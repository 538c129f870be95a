package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/strategy"
)

const logPaneWidth = 48

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	snap := m.engine.Snapshot()

	actionPane := m.styles.Pane.
		Width(max(m.width-2, 1)).
		Render(m.renderActionPane(snap))

	tablePane := m.styles.Pane.
		Width(m.tableWidth).
		Height(m.topHeight).
		Render(m.renderTable(snap))

	logPane := m.styles.LogPane.
		Width(m.logWidth).
		Height(m.topHeight).
		Render(m.logViewport.View())

	top := lipgloss.JoinHorizontal(lipgloss.Top, tablePane, logPane)
	return lipgloss.JoinVertical(lipgloss.Left, top, actionPane)
}

// renderTable draws the counts, the dealer and every player hand.
func (m *Model) renderTable(snap game.Snapshot) string {
	var b strings.Builder

	b.WriteString(m.styles.Header.Render("Blackjack"))
	b.WriteString("\n\n")
	b.WriteString(m.renderCounts(snap))
	b.WriteString("\n\n")

	b.WriteString(m.styles.Label.Render("Dealer "))
	b.WriteString(m.renderDealer(snap.Dealer))
	b.WriteString("\n\n")

	for _, h := range snap.Hands {
		b.WriteString(m.renderHand(h, snap.State))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderCounts(snap game.Snapshot) string {
	field := func(label string, value any) string {
		return m.styles.Label.Render(label+" ") + m.styles.Count.Render(fmt.Sprint(value))
	}
	return strings.Join([]string{
		field("Balance", fmt.Sprintf("$%d", snap.Balance)),
		field("Running", snap.RunningCount),
		field("True", fmt.Sprintf("%.2f", snap.TrueCount)),
		field("Bet", fmt.Sprintf("$%d", snap.RecommendedBet)),
		field("Shoe", fmt.Sprintf("%d%%", snap.Penetration)),
	}, "  ")
}

func (m *Model) renderDealer(d game.DealerView) string {
	if len(d.Cards) == 0 {
		return m.styles.Info.Render("waiting")
	}
	cards := m.renderCards(d.Cards)
	if d.HoleHidden {
		cards = strings.TrimSuffix(cards, "]") + " " + m.styles.HiddenCard() + "]"
	}
	return cards + "  " + d.Score
}

func (m *Model) renderHand(h game.HandView, state game.RoundState) string {
	style := m.styles.Hand
	marker := "  "
	if h.Active {
		style = m.styles.ActiveHand
		marker = "▸ "
	}

	score := h.Score
	if h.Soft && state == game.Playing {
		score += " soft"
	}
	line := style.Render(marker+h.Label+" ") + m.renderCards(h.Cards) + "  " + style.Render(score)
	line += m.styles.Label.Render(fmt.Sprintf("  $%d", h.Bet))
	if h.Doubled {
		line += m.styles.Label.Render(" doubled")
	}
	if state == game.Resolved && h.Outcome != game.Pending {
		line += "  " + m.styles.Tone(h.Outcome).Render(h.Outcome.String())
	}
	return line
}

func (m *Model) renderCards(cards []deck.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = m.styles.Card(c)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// renderActionPane renders the status line, the action buttons or bet input,
// and the key help.
func (m *Model) renderActionPane(snap game.Snapshot) string {
	var b strings.Builder

	status := m.styles.Status
	if snap.State == game.Resolved && snap.LastResult != nil && m.flash == "" {
		status = m.styles.Tone(snap.LastResult.Tone())
	}
	b.WriteString(status.Render(m.status))
	b.WriteString("\n")

	switch {
	case snap.State == game.Playing:
		b.WriteString(m.renderActions(snap))
	case snap.AwaitingProceed && m.manualDealer:
		b.WriteString(m.styles.Info.Render("Press space to continue"))
	case snap.State == game.Betting || snap.State == game.Resolved:
		if snap.Eligible.Deal {
			b.WriteString(m.betInput.View())
		}
	}
	b.WriteString("\n")

	if m.errMsg != "" {
		b.WriteString(m.styles.Error.Render(m.errMsg))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// renderActions shows every player action, highlighting the advised one and
// striking through the ones the engine would refuse.
func (m *Model) renderActions(snap game.Snapshot) string {
	actions := []struct {
		action strategy.Action
		label  string
	}{
		{strategy.Hit, "[h]it"},
		{strategy.Stand, "[s]tand"},
		{strategy.Double, "[d]ouble"},
		{strategy.Split, "s[p]lit"},
	}

	parts := make([]string, len(actions))
	for i, a := range actions {
		style := m.styles.Action
		switch {
		case !snap.Eligible.Allows(a.action) || m.locked:
			style = m.styles.Disabled
		case a.action == snap.Recommended:
			style = m.styles.Advised
		}
		parts[i] = style.Render(a.label)
	}
	return strings.Join(parts, " ")
}
