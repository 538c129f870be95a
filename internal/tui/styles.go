package tui

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/muesli/termenv"
)

// Styles holds every style the table view renders with. They are built from
// a renderer so the colour profile can follow the configured theme.
type Styles struct {
	Header     lipgloss.Style
	Label      lipgloss.Style
	Count      lipgloss.Style
	Hand       lipgloss.Style
	ActiveHand lipgloss.Style
	Status     lipgloss.Style
	Win        lipgloss.Style
	Lose       lipgloss.Style
	Push       lipgloss.Style
	Action     lipgloss.Style
	Advised    lipgloss.Style
	Disabled   lipgloss.Style
	Error      lipgloss.Style
	Info       lipgloss.Style
	Pane       lipgloss.Style
	LogPane    lipgloss.Style

	suits map[string]lipgloss.Style
	back  lipgloss.Style
}

// NewStyles builds styles for a theme: "auto" detects the terminal, "dark" and
// "light" force a background, "plain" disables colour.
func NewStyles(w io.Writer, theme string) Styles {
	r := lipgloss.NewRenderer(w)
	switch theme {
	case "dark":
		r.SetHasDarkBackground(true)
	case "light":
		r.SetHasDarkBackground(false)
	case "plain":
		r.SetColorProfile(termenv.Ascii)
	default:
		output := termenv.NewOutput(w)
		r.SetColorProfile(output.EnvColorProfile())
		r.SetHasDarkBackground(output.HasDarkBackground())
	}
	return newStyles(r)
}

func newStyles(r *lipgloss.Renderer) Styles {
	fg := lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#FAFAFA"}
	dim := lipgloss.AdaptiveColor{Light: "#9A9A9A", Dark: "#626262"}

	return Styles{
		Header: r.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true).
			Padding(0, 1),
		Label: r.NewStyle().Foreground(dim),
		Count: r.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true),
		Hand: r.NewStyle().Foreground(fg),
		ActiveHand: r.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true),
		Status: r.NewStyle().Foreground(fg).Bold(true),
		Win: r.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true),
		Lose: r.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true),
		Push: r.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7")).
			Bold(true),
		Action: r.NewStyle().Foreground(fg),
		Advised: r.NewStyle().
			Foreground(lipgloss.Color("#1A1A1A")).
			Background(lipgloss.Color("#FFD700")).
			Bold(true),
		Disabled: r.NewStyle().Foreground(dim).Strikethrough(true),
		Error: r.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true),
		Info: r.NewStyle().Foreground(dim),
		Pane: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#04B575")).
			Padding(0, 1),
		LogPane: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(dim),

		suits: map[string]lipgloss.Style{
			"black": r.NewStyle().Foreground(fg).Bold(true),
			"green": r.NewStyle().Foreground(lipgloss.Color("#2E9E48")).Bold(true),
			"red":   r.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
			"blue":  r.NewStyle().Foreground(lipgloss.Color("#4D8DFF")).Bold(true),
		},
		back: r.NewStyle().Foreground(dim),
	}
}

// Card renders a card in its four-colour suit colour.
func (s Styles) Card(c deck.Card) string {
	return s.suits[c.Suit.Colour()].Render(c.String())
}

// HiddenCard renders the dealer's face-down card.
func (s Styles) HiddenCard() string {
	return s.back.Render("??")
}

// Tone picks the result colour for a round outcome.
func (s Styles) Tone(o game.Outcome) lipgloss.Style {
	switch o {
	case game.Win:
		return s.Win
	case game.Push:
		return s.Push
	default:
		return s.Lose
	}
}
