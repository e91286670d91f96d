package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/five82/extman/internal/controller"
	"github.com/five82/extman/internal/gateway"
	"github.com/five82/extman/internal/prefs"
	"github.com/five82/extman/internal/state"
)

const flashTTL = 4 * time.Second

// Options configures the UI.
type Options struct {
	Context    context.Context
	Controller *controller.Controller
	// Outcomes carries every resolved mutation from the controller.
	Outcomes  <-chan controller.Outcome
	ThemeName string
	PrefsPath string
	Logger    zerolog.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	ctl       *controller.Controller
	store     *state.Store
	outcomes  <-chan controller.Outcome
	prefsPath string
	logger    zerolog.Logger

	// UI state
	theme    Theme
	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	width    int
	height   int
	ready    bool
	showHelp bool

	// Data state
	snapshot state.Snapshot
	loading  bool
	selected int

	// Transient status line
	flash    string
	flashErr bool
	flashSeq int
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = prefs.DefaultTheme
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot))

	m := Model{
		ctx:       ctx,
		ctl:       opts.Controller,
		outcomes:  opts.Outcomes,
		prefsPath: prefsPath,
		logger:    opts.Logger.With().Str("component", "ui").Logger(),
		theme:     GetTheme(themeName),
		keys:      DefaultKeyMap(),
		help:      help.New(),
		spinner:   sp,
		loading:   true,
	}
	if m.ctl != nil {
		m.store = m.ctl.Store()
		m.snapshot = m.store.Snapshot()
	}
	m.applyTheme()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadCmd(),
		waitForOutcome(m.outcomes),
		m.spinner.Tick,
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		return m, nil

	case loadedMsg:
		m.loading = false
		m.refresh()
		if msg.err != nil {
			m.logger.Warn().Err(msg.err).Msg("load failed")
		}
		return m, nil

	case outcomeMsg:
		m.refresh()
		o := controller.Outcome(msg)
		var cmd tea.Cmd
		if o.Failed() {
			cmd = m.setFlash(m.describeFailure(o), true)
		}
		return m, tea.Batch(cmd, waitForOutcome(m.outcomes))

	case flashExpiredMsg:
		if int(msg) == m.flashSeq {
			m.flash = ""
			m.flashErr = false
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.applyTheme()
		if err := prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name}); err != nil {
			m.logger.Warn().Err(err).Msg("save prefs")
		}
		return m, nil

	case key.Matches(msg, m.keys.Retry):
		if m.snapshot.Status != state.LoadFailed || m.loading {
			return m, nil
		}
		m.loading = true
		m.snapshot.Status = state.LoadPending
		return m, m.loadCmd()

	case key.Matches(msg, m.keys.Up):
		m.moveSelection(-1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.moveSelection(1)
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.selected = 0
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.selected = len(m.snapshot.Visible()) - 1
		m.clampSelection()
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		return m.toggleSelected()

	case key.Matches(msg, m.keys.Remove):
		return m.removeSelected()

	case key.Matches(msg, m.keys.CycleFilter):
		return m.changeFilter(m.snapshot.Filter.Next())

	case key.Matches(msg, m.keys.FilterAll):
		return m.changeFilter(state.FilterAll)

	case key.Matches(msg, m.keys.FilterActive):
		return m.changeFilter(state.FilterActive)

	case key.Matches(msg, m.keys.FilterInactive):
		return m.changeFilter(state.FilterInactive)
	}

	return m, nil
}

func (m Model) toggleSelected() (tea.Model, tea.Cmd) {
	ext, ok := m.selectedExtension()
	if !ok {
		return m, nil
	}
	if _, err := m.ctl.OnToggle(ext.ID, !ext.IsActive); err != nil {
		m.refresh()
		return m, m.setFlash(fmt.Sprintf("Could not update %s: %v", ext.Name, err), true)
	}
	m.refresh()
	return m, nil
}

func (m Model) removeSelected() (tea.Model, tea.Cmd) {
	ext, ok := m.selectedExtension()
	if !ok {
		return m, nil
	}
	if _, err := m.ctl.OnRemove(ext.ID); err != nil {
		m.refresh()
		return m, m.setFlash(fmt.Sprintf("Could not remove %s: %v", ext.Name, err), true)
	}
	m.refresh()
	return m, m.setFlash(fmt.Sprintf("Removed %s", ext.Name), false)
}

func (m Model) changeFilter(f state.Filter) (tea.Model, tea.Cmd) {
	if m.ctl == nil || f == m.snapshot.Filter {
		return m, nil
	}
	m.ctl.OnFilterChange(f)
	m.selected = 0
	m.refresh()
	return m, nil
}

func (m Model) selectedExtension() (gateway.Extension, bool) {
	if m.ctl == nil {
		return gateway.Extension{}, false
	}
	visible := m.snapshot.Visible()
	if m.selected < 0 || m.selected >= len(visible) {
		return gateway.Extension{}, false
	}
	return visible[m.selected], true
}

// refresh re-reads the store. Optimistic changes are applied before the
// controller returns, so a refresh right after an intent shows them.
func (m *Model) refresh() {
	if m.store == nil {
		return
	}
	m.snapshot = m.store.Snapshot()
	m.clampSelection()
}

func (m *Model) moveSelection(delta int) {
	m.selected += delta
	m.clampSelection()
}

func (m *Model) clampSelection() {
	n := len(m.snapshot.Visible())
	if m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m *Model) setFlash(text string, isErr bool) tea.Cmd {
	m.flashSeq++
	m.flash = text
	m.flashErr = isErr
	seq := m.flashSeq
	return tea.Tick(flashTTL, func(time.Time) tea.Msg {
		return flashExpiredMsg(seq)
	})
}

func (m *Model) applyTheme() {
	styles := m.theme.Styles()
	m.spinner.Style = styles.AccentText
	m.help.Styles.ShortKey = styles.AccentText
	m.help.Styles.ShortDesc = styles.MutedText
	m.help.Styles.ShortSeparator = styles.FaintText
	m.help.Styles.FullKey = styles.WarningText
	m.help.Styles.FullDesc = styles.Text
	m.help.Styles.FullSeparator = styles.FaintText
}

func (m Model) describeFailure(o controller.Outcome) string {
	name := "#" + o.ID.String()
	if m.store != nil {
		if ext, err := m.store.Get(o.ID); err == nil && ext.Name != "" {
			name = ext.Name
		}
	}
	reason := "request failed"
	if o.Err != nil {
		reason = firstLine(o.Err.Error())
	}
	switch {
	case o.Deferred:
		return fmt.Sprintf("Could not update %s, newer change still pending (%s)", name, reason)
	case o.Kind == controller.KindRemove:
		return fmt.Sprintf("Could not remove %s, restored (%s)", name, reason)
	default:
		return fmt.Sprintf("Could not update %s, reverted (%s)", name, reason)
	}
}

// Messages

type loadedMsg struct{ err error }

type outcomeMsg controller.Outcome

type flashExpiredMsg int

// Commands

func (m Model) loadCmd() tea.Cmd {
	ctl, ctx := m.ctl, m.ctx
	if ctl == nil {
		return nil
	}
	return func() tea.Msg {
		err := ctl.Load(ctx)
		if errors.Is(err, controller.ErrAlreadyLoaded) {
			err = nil
		}
		return loadedMsg{err: err}
	}
}

func waitForOutcome(ch <-chan controller.Outcome) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		o, ok := <-ch
		if !ok {
			return nil
		}
		return outcomeMsg(o)
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, opts Options) error {
	if opts.Controller == nil {
		return fmt.Errorf("ui requires a controller")
	}
	if opts.Context == nil {
		opts.Context = ctx
	}
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
