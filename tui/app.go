package tui

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"seatmap-cli/canvas"
	"seatmap-cli/logger"
	"seatmap-cli/model"
	"seatmap-cli/seatmap"
	"seatmap-cli/service"
	"seatmap-cli/store"
)

// canvasTop is the number of header rows above the canvas.
const canvasTop = 4

type appState int

const (
	stateSelectFloorPlan appState = iota
	stateOpenPath
	stateLoading
	stateCanvas
	stateEditPrefix
	stateError
)

// Options wires the page to its collaborators.
type Options struct {
	Engine *seatmap.Engine
	Client *service.Client
	Logger *logger.Logger
	// Background is loaded on start when set.
	Background string
	ShowLabels bool
}

type appModel struct {
	engine *seatmap.Engine
	client *service.Client
	log    *logger.Logger

	state     appState
	lastState appState
	err       error

	width  int
	height int

	image      image.Image
	view       canvas.View
	gesture    gesture
	hover      string
	showLabels bool
	initial    string
	loading    string

	recentList  list.Model
	pathInput   textinput.Model
	prefixInput textinput.Model
	spinner     spinner.Model
	help        help.Model
	keys        keyMap
}

type errMsg struct {
	err error
}

type floorPlanMsg struct {
	source string
	image  service.FloorPlanImage
	err    error
}

type recentItem struct {
	plan store.RecentFloorPlan
}

func (r recentItem) Title() string {
	if r.plan.Name != "" {
		return r.plan.Name
	}
	return r.plan.Source
}

func (r recentItem) Description() string {
	if r.plan.Width > 0 && r.plan.Height > 0 {
		return fmt.Sprintf("%s • %dx%d", r.plan.Source, r.plan.Width, r.plan.Height)
	}
	return r.plan.Source
}

func (r recentItem) FilterValue() string {
	return r.plan.Name + " " + r.plan.Source
}

func New(opts Options) tea.Model {
	engine := opts.Engine
	if engine == nil {
		engine = seatmap.New(seatmap.Options{})
	}
	client := opts.Client
	if client == nil {
		client = service.NewClient(nil)
	}
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	m := appModel{
		engine:     engine,
		client:     client,
		log:        log.WithComponent("tui"),
		state:      stateOpenPath,
		view:       canvas.NewView(),
		showLabels: opts.ShowLabels,
		initial:    strings.TrimSpace(opts.Background),
		keys:       newKeyMap(),
		help:       help.New(),
	}

	m.recentList = newList("Recent floor plans")

	m.pathInput = textinput.New()
	m.pathInput.Prompt = "Floor plan: "
	m.pathInput.Placeholder = "path/to/plan.png or https://..."
	m.pathInput.CharLimit = 2048

	m.prefixInput = textinput.New()
	m.prefixInput.Prompt = "Label prefix: "
	m.prefixInput.CharLimit = 16

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	m.spinner = sp

	m.keys.sync(engine.State())
	return m
}

func (m appModel) Init() tea.Cmd {
	if m.initial != "" {
		return tea.Batch(m.loadFloorPlanCmd(m.initial), m.spinner.Tick)
	}
	return m.loadRecentCmd()
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		next, cmd, handled := m.handleKey(msg)
		if handled {
			return next, cmd
		}
		m = next.(appModel)
		// fallthrough to component update

	case tea.MouseMsg:
		// The help screen hides the canvas.
		if m.state != stateCanvas || m.help.ShowAll {
			return m, nil
		}
		return m.handleMouse(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.state == stateLoading {
			return m, cmd
		}
		return m, nil

	case errMsg:
		m.err = msg.err
		m.lastState = recoverStateFrom(m.state, m.engine.State())
		m.state = stateError
		return m, nil

	case recentMsg:
		if len(msg.plans) == 0 {
			cmd := m.openPathInput()
			return m, cmd
		}
		items := make([]list.Item, 0, len(msg.plans))
		for _, plan := range msg.plans {
			items = append(items, recentItem{plan: plan})
		}
		m.recentList.SetItems(items)
		m.state = stateSelectFloorPlan
		return m, nil

	case floorPlanMsg:
		if msg.err != nil {
			m.log.WithError(msg.err).Warn("floor plan load failed", slog.String("source", msg.source))
			m.state = recoverStateFrom(stateLoading, m.engine.State())
			return m, errCmd(fmt.Errorf("load %s: %w", msg.source, msg.err))
		}
		plan := msg.image.Plan
		m.image = msg.image.Image
		m.view = m.view.Reset()
		m.engine.SetBackground(&plan)
		if err := store.RememberFloorPlan(plan); err != nil {
			m.log.WithError(err).Warn("remember floor plan")
		}
		m.log.Info("floor plan loaded", slog.String("source", plan.Source), slog.Int("width", plan.Width), slog.Int("height", plan.Height))
		m.state = stateCanvas
		m.keys.sync(m.engine.State())
		return m, nil
	}

	var cmd tea.Cmd
	switch m.state {
	case stateSelectFloorPlan:
		m.recentList, cmd = m.recentList.Update(msg)
	case stateOpenPath:
		m.pathInput, cmd = m.pathInput.Update(msg)
	case stateEditPrefix:
		m.prefixInput, cmd = m.prefixInput.Update(msg)
	}
	return m, cmd
}

func (m appModel) View() string {
	header := m.headerView()
	switch m.state {
	case stateLoading:
		return header + "\n" + fmt.Sprintf("%s Loading %s", m.spinner.View(), m.loading)
	case stateSelectFloorPlan:
		return header + "\n" + m.recentList.View()
	case stateOpenPath:
		return header + "\n" + m.pathInput.View() + "\n\n" + hint("enter open • esc back • ctrl+c quit")
	case stateEditPrefix:
		return header + "\n" + m.prefixInput.View() + "\n\n" + hint("Existing labels keep their prefix. enter apply • esc cancel")
	case stateCanvas:
		if m.help.ShowAll {
			return header + "\n" + m.help.View(m.keys)
		}
		return header + "\n" + m.renderCanvas(m.width, m.height-canvasTop)
	case stateError:
		return header + "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render(m.err.Error()) + "\n\n" + hint("Press esc to go back or ctrl+c to quit.")
	default:
		return header
	}
}

// headerView is always exactly canvasTop lines tall so mouse rows map
// straight onto canvas rows.
func (m appModel) headerView() string {
	state := m.engine.State()

	title := lipgloss.NewStyle().Bold(true).Render("Seat Map")
	if state.Background != nil {
		title += lipgloss.NewStyle().Faint(true).Render(fmt.Sprintf(" • %s (%dx%d)", state.Background.Name, state.Background.Width, state.Background.Height))
	}

	booked, available := state.Counts()
	sub := []string{
		fmt.Sprintf("Mode: %s", state.Mode),
		fmt.Sprintf("Prefix: %q", state.Prefix),
		fmt.Sprintf("Next: %s%d", state.Prefix, state.NextNumber()),
		fmt.Sprintf("Seats: %d (%d booked, %d available)", len(state.Seats), booked, available),
	}
	if state.SelectionMode {
		sub = append(sub, fmt.Sprintf("Selected: %d", len(state.Selected)))
	}
	sub = append(sub, fmt.Sprintf("Zoom: %.0f%%", m.view.Scale*100))
	meta := lipgloss.NewStyle().Faint(true).Render(strings.Join(sub, " • "))

	guide := lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245")).Render(guidance(state))

	return truncate(title, m.width) + "\n" +
		truncate(meta, m.width) + "\n" +
		truncate(guide, m.width) + "\n" +
		m.help.ShortHelpView(m.keys.ShortHelp())
}

func guidance(s seatmap.State) string {
	switch {
	case s.SelectionMode && s.Mode == seatmap.ModeEdit:
		return "Deletion mode: select seats to remove."
	case s.SelectionMode:
		return `Booking mode: select seats to book, then press "b".`
	case s.Mode == seatmap.ModeEdit:
		return "Edit mode: click on the canvas to add new seats, drag to move, right click to delete."
	default:
		return "View mode: click on seats to toggle booking."
	}
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit, true
	}

	switch m.state {
	case stateSelectFloorPlan:
		if m.recentList.SettingFilter() {
			return m, nil, false
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit, true
		case key.Matches(msg, m.keys.Open):
			cmd := m.openPathInput()
			return m, cmd, true
		case key.Matches(msg, m.keys.Back):
			if m.engine.State().HasBackground() {
				m.state = stateCanvas
				return m, nil, true
			}
			return m, nil, false
		case msg.Type == tea.KeyEnter:
			item, ok := m.recentList.SelectedItem().(recentItem)
			if !ok {
				return m, nil, true
			}
			cmd := m.startLoading(item.plan.Source)
			return m, cmd, true
		}
		return m, nil, false

	case stateOpenPath:
		switch msg.Type {
		case tea.KeyEnter:
			source := strings.TrimSpace(m.pathInput.Value())
			if source == "" {
				return m, nil, true
			}
			m.pathInput.Blur()
			cmd := m.startLoading(source)
			return m, cmd, true
		case tea.KeyEsc:
			m.pathInput.Blur()
			next, cmd := m.goBack()
			return next, cmd, true
		}
		return m, nil, false

	case stateEditPrefix:
		switch msg.Type {
		case tea.KeyEnter:
			m.prefixInput.Blur()
			m.applyPrefix(m.prefixInput.Value())
			m.state = stateCanvas
			return m, nil, true
		case tea.KeyEsc:
			m.prefixInput.Blur()
			m.state = stateCanvas
			return m, nil, true
		}
		return m, nil, false

	case stateLoading:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit, true
		}
		return m, nil, true

	case stateError:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit, true
		case key.Matches(msg, m.keys.Back), msg.Type == tea.KeyEnter:
			next, cmd := m.goBack()
			return next, cmd, true
		}
		return m, nil, true
	}

	return m.handleCanvasKey(msg)
}

func (m appModel) handleCanvasKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	center := m.canvasCenter()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit, true
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Back):
		switch {
		case m.help.ShowAll:
			m.help.ShowAll = false
		case m.gesture.kind != gestureNone:
			m.gesture = gesture{}
		case m.engine.State().SelectionMode:
			m.engine.ToggleSelectionMode()
		}
	case key.Matches(msg, m.keys.Mode):
		m.gesture = gesture{}
		m.engine.ToggleMode()
	case key.Matches(msg, m.keys.Select):
		m.engine.ToggleSelectionMode()
	case key.Matches(msg, m.keys.Delete):
		if seatmap.Offers(m.engine.State(), seatmap.ActionDelete) {
			m.engine.DeleteSelected()
		}
	case key.Matches(msg, m.keys.Book):
		if seatmap.Offers(m.engine.State(), seatmap.ActionBook) {
			m.engine.BookSelected()
		}
	case key.Matches(msg, m.keys.Unbook):
		if seatmap.Offers(m.engine.State(), seatmap.ActionUnbook) {
			m.engine.UnbookSelected()
		}
	case key.Matches(msg, m.keys.Prefix):
		m.prefixInput.SetValue(m.engine.State().Prefix)
		m.prefixInput.CursorEnd()
		m.state = stateEditPrefix
		cmd := m.prefixInput.Focus()
		return m, cmd, true
	case key.Matches(msg, m.keys.Labels):
		m.showLabels = !m.showLabels
		m.savePreferences()
	case key.Matches(msg, m.keys.ZoomIn):
		m.view = m.view.Zoom(center, -1)
	case key.Matches(msg, m.keys.ZoomOut):
		m.view = m.view.Zoom(center, 1)
	case key.Matches(msg, m.keys.Reset):
		m.view = m.view.Reset()
	case key.Matches(msg, m.keys.Up):
		m.view = m.view.PanBy(canvas.Point{Y: panStepY})
	case key.Matches(msg, m.keys.Down):
		m.view = m.view.PanBy(canvas.Point{Y: -panStepY})
	case key.Matches(msg, m.keys.Left):
		m.view = m.view.PanBy(canvas.Point{X: panStepX})
	case key.Matches(msg, m.keys.Right):
		m.view = m.view.PanBy(canvas.Point{X: -panStepX})
	case key.Matches(msg, m.keys.Open):
		cmd := m.openPathInput()
		return m, cmd, true
	case key.Matches(msg, m.keys.Recent):
		return m, m.loadRecentCmd(), true
	default:
		return m, nil, true
	}
	m.keys.sync(m.engine.State())
	return m, nil, true
}

const (
	panStepX = 4
	panStepY = 2
)

func (m *appModel) applyPrefix(prefix string) {
	state := m.engine.SetPrefix(prefix)
	m.log.Info("label prefix changed", slog.String("prefix", prefix), slog.Int("next", state.NextNumber()))
	m.savePreferences()
}

func (m appModel) savePreferences() {
	prefs := store.Preferences{LabelPrefix: m.engine.State().Prefix, ShowLabels: m.showLabels}
	if err := store.SavePreferences(prefs); err != nil {
		m.log.WithError(err).Warn("save preferences")
	}
}

func (m *appModel) openPathInput() tea.Cmd {
	m.state = stateOpenPath
	m.pathInput.SetValue("")
	return m.pathInput.Focus()
}

func (m *appModel) startLoading(source string) tea.Cmd {
	m.loading = source
	m.state = stateLoading
	return tea.Batch(m.loadFloorPlanCmd(source), m.spinner.Tick)
}

func (m appModel) goBack() (tea.Model, tea.Cmd) {
	switch m.state {
	case stateOpenPath:
		if m.engine.State().HasBackground() {
			m.state = stateCanvas
			return m, nil
		}
		if len(m.recentList.Items()) > 0 {
			m.state = stateSelectFloorPlan
		}
	case stateError:
		m.state = m.lastState
		if m.state == stateOpenPath {
			cmd := m.pathInput.Focus()
			return m, cmd
		}
	}
	return m, nil
}

func (m *appModel) resize() {
	if m.width == 0 || m.height == 0 {
		return
	}
	h := m.height - canvasTop - 1
	if h < 4 {
		h = 4
	}
	m.recentList.SetSize(m.width, h)
	m.pathInput.Width = max(10, m.width-len(m.pathInput.Prompt)-2)
	m.help.Width = m.width

	rows := max(0, m.height-canvasTop)
	m.engine.Resize(canvas.Size{Width: float64(m.width), Height: float64(rows)})
}

func (m appModel) canvasCenter() canvas.Point {
	size := m.engine.State().Size
	return canvas.Point{X: size.Width / 2, Y: size.Height / 2}
}

func newList(title string) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = title
	l.SetFilteringEnabled(true)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	return l
}

func hint(text string) string {
	return lipgloss.NewStyle().Faint(true).Render(text)
}

func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}

func errCmd(err error) tea.Cmd {
	return func() tea.Msg {
		return errMsg{err: err}
	}
}

// recoverStateFrom picks where esc on the error screen returns to.
func recoverStateFrom(state appState, s seatmap.State) appState {
	switch state {
	case stateLoading, stateError:
		if s.HasBackground() {
			return stateCanvas
		}
		return stateOpenPath
	default:
		return state
	}
}

type recentMsg struct {
	plans []store.RecentFloorPlan
}

func (m appModel) loadRecentCmd() tea.Cmd {
	log := m.log
	return func() tea.Msg {
		plans, err := store.LoadRecentFloorPlans()
		if err != nil {
			log.WithError(err).Warn("load recent floor plans")
		}
		return recentMsg{plans: plans}
	}
}

func (m appModel) loadFloorPlanCmd(source string) tea.Cmd {
	client := m.client
	log := m.log
	return func() tea.Msg {
		ctx := context.Background()
		if !service.IsRemote(source) {
			fp, err := client.Load(ctx, source)
			return floorPlanMsg{source: source, image: fp, err: err}
		}

		if cached, fresh, err := store.LoadFloorPlanCache(source); err == nil && fresh {
			if fp, err := service.Decode(source, cached); err == nil {
				log.Debug("floor plan served from cache", slog.String("source", source))
				return floorPlanMsg{source: source, image: fp}
			}
		}
		data, err := client.Fetch(ctx, source)
		if err != nil {
			return floorPlanMsg{source: source, err: err}
		}
		fp, err := service.Decode(source, data)
		if err != nil {
			return floorPlanMsg{source: source, err: err}
		}
		if err := store.SaveFloorPlanCache(source, data); err != nil {
			log.WithError(err).Warn("cache floor plan")
		}
		return floorPlanMsg{source: source, image: fp}
	}
}

// FloorPlan exposes the loaded plan, if any, for callers that inspect the
// final model after the program exits.
func FloorPlan(m tea.Model) (model.FloorPlan, bool) {
	am, ok := m.(appModel)
	if !ok {
		return model.FloorPlan{}, false
	}
	state := am.engine.State()
	if state.Background == nil {
		return model.FloorPlan{}, false
	}
	return *state.Background, true
}
