package tui

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/strategy"
)

// Options configures the terminal table.
type Options struct {
	Logger *log.Logger
	Clock  quartz.Clock
	Styles *Styles
	// Narrator, when set, feeds the log pane. It must already be subscribed to the engine.
	Narrator *game.Narrator
	// HeroDelay locks input after each player action.
	HeroDelay time.Duration
	// ActionDelay spaces out dealer steps when the dealer plays on its own.
	ActionDelay time.Duration
	// ManualDealer waits for space or enter before every dealer step.
	ManualDealer bool
}

type timerKind int

const (
	heroDone timerKind = iota
	dealerStepDue
)

// timerMsg is delivered when a pacing timer fires. Messages from a timer that
// has since been replaced carry an old generation and are ignored.
type timerMsg struct {
	kind timerKind
	gen  int
}

// narrationMsg carries one narrated sentence.
type narrationMsg struct {
	line string
}

// Model is the Bubble Tea model for the blackjack table. The engine it drives
// must have been created with game.WithPauseDealer(true); the model decides
// when each dealer step runs.
type Model struct {
	engine   *game.Engine
	narrator *game.Narrator
	logger   *log.Logger
	clock    quartz.Clock
	styles   Styles
	keys     KeyMap
	help     help.Model

	heroDelay    time.Duration
	actionDelay  time.Duration
	manualDealer bool

	betInput    textinput.Model
	logViewport viewport.Model
	gameLog     []string
	// summary holds the round result until the narration before it is logged.
	summary string

	status   string
	flash    string // overrides the engine message until the next command
	errMsg   string
	locked   bool
	timer    *quartz.Timer
	timerGen int
	ticks    chan tea.Msg

	width      int
	height     int
	tableWidth int
	logWidth   int
	topHeight  int
	quitting   bool
}

// NewModel creates the table model for an engine.
func NewModel(engine *game.Engine, opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	styles := NewStyles(io.Discard, "plain")
	if opts.Styles != nil {
		styles = *opts.Styles
	}

	ti := textinput.New()
	ti.Placeholder = "bet"
	ti.Prompt = "Bet $"
	ti.CharLimit = 9
	ti.Width = 12
	ti.Focus()

	m := &Model{
		engine:       engine,
		narrator:     opts.Narrator,
		logger:       opts.Logger.WithPrefix("tui"),
		clock:        opts.Clock,
		styles:       styles,
		keys:         DefaultKeyMap(),
		help:         help.New(),
		heroDelay:    opts.HeroDelay,
		actionDelay:  opts.ActionDelay,
		manualDealer: opts.ManualDealer,
		betInput:     ti,
		logViewport:  viewport.New(40, 10),
		ticks:        make(chan tea.Msg, 4),
	}
	engine.Subscribe(game.SubscriberFunc(m.onEvent))
	m.resetBetInput()
	m.refresh()
	return m
}

// Init starts listening for pacing timers and narration.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForTick(), m.waitForNarration())
}

func (m *Model) waitForTick() tea.Cmd {
	return func() tea.Msg {
		return <-m.ticks
	}
}

func (m *Model) waitForNarration() tea.Cmd {
	if m.narrator == nil {
		return nil
	}
	lines := m.narrator.Lines()
	return func() tea.Msg {
		return narrationMsg{line: <-lines}
	}
}

// onEvent reacts to engine events that the snapshot alone does not show.
func (m *Model) onEvent(ev game.Event) {
	switch ev := ev.(type) {
	case game.ShuffleEvent:
		m.flash = "Deck Shuffled!"
	case game.RoundEndEvent:
		line := m.styles.Tone(ev.Result.Tone()).Render(ev.Result.Summary())
		if m.narrator == nil {
			m.appendLog(line)
			return
		}
		m.flushSummary()
		m.summary = line
	}
}

// flushSummary logs a held round result.
func (m *Model) flushSummary() {
	if m.summary != "" {
		m.appendLog(m.summary)
		m.summary = ""
	}
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)
		m.resize()

	case timerMsg:
		cmds = append(cmds, m.waitForTick())
		if msg.gen == m.timerGen {
			cmds = append(cmds, m.onTimer(msg.kind))
		}

	case narrationMsg:
		m.appendLog(msg.line)
		if len(m.narrator.Lines()) == 0 {
			m.flushSummary()
		}
		cmds = append(cmds, m.waitForNarration())

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			m.stopTimer()
			return m, tea.Quit
		}
		cmd, handled := m.handleKey(msg)
		cmds = append(cmds, cmd)
		if handled {
			m.refresh()
			return m, tea.Batch(cmds...)
		}
	}

	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)
	m.refresh()
	return m, tea.Batch(cmds...)
}

// handleKey dispatches table keys and reports whether the key was consumed.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return nil, true
	case key.Matches(msg, m.keys.ScrollUp), key.Matches(msg, m.keys.ScrollDn):
		return nil, false
	}

	if m.locked {
		m.logger.Debug("Input ignored while busy", "key", msg.String())
		return nil, true
	}

	snap := m.engine.Snapshot()

	if snap.AwaitingProceed {
		if !m.manualDealer {
			return nil, true
		}
		switch {
		case key.Matches(msg, m.keys.Shortcut):
			return m.dealerStep(m.engine.Shortcut), true
		case key.Matches(msg, m.keys.Deal):
			return m.dealerStep(m.engine.Proceed), true
		}
		return nil, true
	}

	switch snap.State {
	case game.Betting, game.Resolved:
		return m.handleBettingKey(msg, snap)
	case game.Playing:
		return m.handlePlayingKey(msg), true
	}
	return nil, true
}

func (m *Model) handleBettingKey(msg tea.KeyMsg, snap game.Snapshot) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Deal):
		input := strings.TrimSpace(m.betInput.Value())
		if input == "" {
			input = strconv.Itoa(m.defaultBet(snap))
		}
		return m.placeBet(input), true
	case key.Matches(msg, m.keys.Shortcut):
		return m.placeBet(strconv.Itoa(m.defaultBet(snap))), true
	case msg.Type == tea.KeyRunes:
		for _, r := range msg.Runes {
			if r < '0' || r > '9' {
				return nil, true
			}
		}
	}

	var cmd tea.Cmd
	m.betInput, cmd = m.betInput.Update(msg)
	return cmd, true
}

func (m *Model) handlePlayingKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Shortcut) {
		return m.act(m.engine.RecommendedAction(), m.engine.Shortcut)
	}

	var action strategy.Action
	switch {
	case key.Matches(msg, m.keys.Hit):
		action = strategy.Hit
	case key.Matches(msg, m.keys.Stand):
		action = strategy.Stand
	case key.Matches(msg, m.keys.Double):
		action = strategy.Double
	case key.Matches(msg, m.keys.Split):
		action = strategy.Split
	default:
		return nil
	}
	return m.act(action, func() error { return m.engine.Execute(action) })
}

// act runs a player action through run and locks input for the hero delay.
func (m *Model) act(action strategy.Action, run func() error) tea.Cmd {
	snap := m.engine.Snapshot()
	label := "Hero"
	if snap.ActiveHand < len(snap.Hands) {
		label = snap.Hands[snap.ActiveHand].Label
	}
	m.flash = ""
	if err := run(); err != nil {
		m.showError(err)
		return nil
	}
	m.errMsg = ""
	m.flash = fmt.Sprintf("%s chooses to %s", label, actionName(action))
	m.dumpSnapshot(action.String())
	m.locked = true
	return m.schedule(heroDone, m.heroDelay)
}

func (m *Model) placeBet(input string) tea.Cmd {
	m.flash = ""
	if err := m.engine.PlaceBetString(input); err != nil {
		m.showError(err)
		return nil
	}
	m.errMsg = ""
	m.betInput.SetValue("")
	m.dumpSnapshot("bet")
	m.locked = true
	return m.schedule(heroDone, m.heroDelay)
}

// dealerStep runs one paused dealer step through run, either Proceed or the
// engine's shortcut.
func (m *Model) dealerStep(run func() error) tea.Cmd {
	if err := run(); err != nil {
		m.showError(err)
		return nil
	}
	m.flash = ""
	m.dumpSnapshot("proceed")
	return m.afterDealerStep()
}

// onTimer handles a fired pacing timer.
func (m *Model) onTimer(kind timerKind) tea.Cmd {
	switch kind {
	case heroDone:
		m.locked = false
		if m.engine.AwaitingProceed() {
			return m.afterDealerStep()
		}
		if s := m.engine.State(); s == game.Resolved || s == game.Betting {
			m.resetBetInput()
		}
	case dealerStepDue:
		return m.dealerStep(m.engine.Proceed)
	}
	return nil
}

// afterDealerStep schedules the next dealer step, or waits for the player
// when the dealer is paced by hand.
func (m *Model) afterDealerStep() tea.Cmd {
	if !m.engine.AwaitingProceed() {
		m.resetBetInput()
		return nil
	}
	if m.manualDealer {
		return nil
	}
	return m.schedule(dealerStepDue, m.actionDelay)
}

// schedule fires a timer message after d on the model's clock. Any pending
// timer is replaced.
func (m *Model) schedule(kind timerKind, d time.Duration) tea.Cmd {
	m.stopTimer()
	m.timerGen++
	msg := timerMsg{kind: kind, gen: m.timerGen}
	if d <= 0 {
		return func() tea.Msg { return msg }
	}
	m.timer = m.clock.AfterFunc(d, func() {
		m.ticks <- msg
	})
	return nil
}

func (m *Model) stopTimer() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *Model) resetBetInput() {
	snap := m.engine.Snapshot()
	m.betInput.SetValue("")
	m.betInput.Placeholder = strconv.Itoa(m.defaultBet(snap))
}

// defaultBet is the counting ramp's bet clamped to what the player can afford.
func (m *Model) defaultBet(snap game.Snapshot) int {
	bet := min(snap.RecommendedBet, snap.Balance)
	return max(bet, 1)
}

func (m *Model) showError(err error) {
	m.errMsg = err.Error()
	m.logger.Warn("Command rejected", "error", err)
}

func (m *Model) dumpSnapshot(command string) {
	if m.logger.GetLevel() > log.DebugLevel {
		return
	}
	m.logger.Debug("Snapshot", "command", command, "state", m.engine.Snapshot().Dump())
}

// refresh recomputes everything derived from the engine state.
func (m *Model) refresh() {
	snap := m.engine.Snapshot()
	m.keys.update(snap.Eligible, m.locked)

	switch {
	case m.flash != "":
		m.status = m.flash
	case snap.Balance == 0 && (snap.State == game.Resolved || snap.State == game.Betting):
		m.status = "Out of money"
	case snap.State == game.Betting:
		m.status = "Place your bet"
	default:
		m.status = snap.Message
	}
	m.resize()
}

// resize splits the window into the table, log and action panes. The action
// pane grows with its content, so this runs on every refresh as well as on
// window size changes.
func (m *Model) resize() {
	if m.width == 0 || m.height == 0 {
		return
	}
	snap := m.engine.Snapshot()
	actionHeight := lipgloss.Height(m.styles.Pane.Width(max(m.width-2, 1)).Render(m.renderActionPane(snap)))

	m.topHeight = max(m.height-actionHeight-2, 1)
	m.logWidth = min(logPaneWidth, max(m.width/2, 1))
	m.tableWidth = max(m.width-m.logWidth-4, 1)
	m.logViewport.Width = max(m.logWidth-2, 1)
	m.logViewport.Height = m.topHeight
}

func (m *Model) appendLog(line string) {
	m.gameLog = append(m.gameLog, line)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// Status returns the status line currently shown.
func (m *Model) Status() string { return m.status }

// Locked reports whether input is ignored while a pacing delay runs.
func (m *Model) Locked() bool { return m.locked }

// Log returns the lines shown in the log pane.
func (m *Model) Log() []string {
	return append([]string(nil), m.gameLog...)
}

func actionName(a strategy.Action) string {
	if a == strategy.Double {
		return "Double Down"
	}
	return a.String()
}

var _ tea.Model = (*Model)(nil)
