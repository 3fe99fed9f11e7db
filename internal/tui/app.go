// internal/tui/app.go
//
// This is the main TUI for lonboard. It uses bubbletea, which follows The
// Elm Architecture: the App model holds all state, Update reacts to typed
// messages, View renders the current state to a string. Every network call
// runs inside a tea.Cmd and comes back as a message; handlers that fire
// after a view has been left are discarded by the state checks in Update.

package tui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lonhq/lonboard/internal/api"
	"github.com/lonhq/lonboard/internal/config"
	"github.com/lonhq/lonboard/internal/logbook"
	"github.com/lonhq/lonboard/internal/resource"
	"github.com/lonhq/lonboard/internal/session"
)

// appState represents which "screen" we're on.
type appState int

const (
	stateLoading appState = iota // restoring a persisted session
	stateLogin
	stateProjects      // table / kanban / calendar views
	stateProjectDetail // one project plus its tasks
)

const (
	expiryWarningWindow = 2 * time.Minute
	expiryPollInterval  = 30 * time.Second
)

type restoreDoneMsg struct{}

type healthMsg struct {
	health api.Health
	err    error
}

type sessionEndedMsg struct{}

type expiryCheckMsg struct{}

type renewResultMsg struct {
	err error
}

type logoutDoneMsg struct{}

// openProjectMsg asks the root model to show a project's detail view.
type openProjectMsg struct {
	id int
}

// backToProjectsMsg returns from the detail view.
type backToProjectsMsg struct{}

// App is the root application model, created once in main and handed every
// dependency explicitly.
type App struct {
	state   appState
	config  *config.Config
	session *session.Session
	store   *resource.Store
	logbook *logbook.Logbook

	loginView    *loginView
	tableView    *tableView
	kanbanView   *kanbanView
	calendarView *calendarView
	detailView   *detailView

	// projectView selects which of the three project views renders while in
	// stateProjects.
	projectView string

	sessionEnded chan struct{}

	width  int
	height int

	statusMsg     string
	healthLine    string
	expiryWarning bool
}

// NewApp wires the root model. The session-ended signal from the HTTP layer
// is bridged into the message loop via a channel the app keeps drained.
func NewApp(cfg *config.Config, sess *session.Session, store *resource.Store, lb *logbook.Logbook) *App {
	app := &App{
		state:        stateLoading,
		config:       cfg,
		session:      sess,
		store:        store,
		logbook:      lb,
		projectView:  cfg.DefaultView(),
		sessionEnded: make(chan struct{}, 1),
	}
	app.loginView = newLoginView(app)
	app.tableView = newTableView(app)
	app.kanbanView = newKanbanView(app)
	app.calendarView = newCalendarView(app)
	sess.OnEnded(func() {
		select {
		case app.sessionEnded <- struct{}{}:
		default:
		}
	})
	return app
}

// Init kicks off session restore, the health probe and the signal listeners.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.restoreSession(),
		a.probeHealth(),
		a.waitForSessionEnd(),
		a.scheduleExpiryCheck(),
	)
}

func (a *App) restoreSession() tea.Cmd {
	return func() tea.Msg {
		a.session.Restore(context.Background())
		return restoreDoneMsg{}
	}
}

func (a *App) probeHealth() tea.Cmd {
	return func() tea.Msg {
		health, err := a.session.Client().Auth().Health(context.Background())
		return healthMsg{health: health, err: err}
	}
}

func (a *App) waitForSessionEnd() tea.Cmd {
	return func() tea.Msg {
		<-a.sessionEnded
		return sessionEndedMsg{}
	}
}

func (a *App) scheduleExpiryCheck() tea.Cmd {
	return tea.Tick(expiryPollInterval, func(time.Time) tea.Msg {
		return expiryCheckMsg{}
	})
}

func (a *App) renewSession() tea.Cmd {
	return func() tea.Msg {
		return renewResultMsg{err: a.session.Renew(context.Background())}
	}
}

func (a *App) logout() tea.Cmd {
	return func() tea.Msg {
		a.session.Logout(context.Background())
		return logoutDoneMsg{}
	}
}

// Update is called whenever a message arrives.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.tableView.setSize(msg.Width, msg.Height)
		a.kanbanView.setSize(msg.Width, msg.Height)
		a.calendarView.setSize(msg.Width, msg.Height)
		if a.detailView != nil {
			a.detailView.setSize(msg.Width, msg.Height)
		}
		return a, nil

	case restoreDoneMsg:
		if a.session.Authenticated() {
			return a.showProjects()
		}
		a.state = stateLogin
		return a, a.loginView.Init()

	case loginDoneMsg:
		// The login view reports success; failures stay on the form.
		return a.showProjects()

	case sessionEndedMsg:
		a.store.Reset()
		a.state = stateLogin
		a.statusMsg = "Session expired. Sign in again."
		a.expiryWarning = false
		return a, tea.Batch(a.loginView.Init(), a.waitForSessionEnd())

	case logoutDoneMsg:
		a.store.Reset()
		a.state = stateLogin
		a.statusMsg = "Signed out."
		a.expiryWarning = false
		return a, a.loginView.Init()

	case healthMsg:
		if msg.err != nil {
			a.healthLine = "backend: unreachable"
		} else {
			a.healthLine = "backend: " + msg.health.Status
		}
		return a, nil

	case expiryCheckMsg:
		a.expiryWarning = a.session.Authenticated() && a.session.ExpiresWithin(expiryWarningWindow)
		return a, a.scheduleExpiryCheck()

	case renewResultMsg:
		if msg.err != nil {
			a.statusMsg = "Session renewal failed"
			a.logbook.Warn("session renewal failed: %v", msg.err)
		} else {
			a.statusMsg = "Session renewed"
			a.expiryWarning = false
		}
		return a, nil

	case openProjectMsg:
		a.detailView = newDetailView(a, msg.id)
		a.detailView.setSize(a.width, a.height)
		a.state = stateProjectDetail
		return a, a.detailView.Init()

	case backToProjectsMsg:
		a.detailView = nil
		a.state = stateProjects
		return a, a.currentProjectView().Refresh()

	case tea.KeyMsg:
		if cmd, handled := a.handleGlobalKey(msg); handled {
			return a, cmd
		}
	}

	return a, a.routeToView(msg)
}

// handleGlobalKey processes keys that apply regardless of the active view.
func (a *App) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit, true
	case "ctrl+r":
		if a.expiryWarning {
			return a.renewSession(), true
		}
	case "ctrl+l":
		if a.state == stateProjects || a.state == stateProjectDetail {
			return a.logout(), true
		}
	case "q":
		if a.state == stateProjects && !a.currentProjectView().CapturesText() {
			return tea.Quit, true
		}
	case "1", "2", "3":
		if a.state == stateProjects && !a.currentProjectView().CapturesText() {
			return a.switchProjectView(msg.String()), true
		}
	case "esc":
		// While the detail view owns the keyboard (task form, delete
		// confirm), esc cancels that first; it is routed down instead.
		if a.state == stateProjectDetail && a.detailView != nil && !a.detailView.CapturesText() {
			return func() tea.Msg { return backToProjectsMsg{} }, true
		}
	}
	return nil, false
}

func (a *App) switchProjectView(key string) tea.Cmd {
	views := map[string]string{"1": "table", "2": "kanban", "3": "calendar"}
	view := views[key]
	if view == a.projectView {
		return nil
	}
	a.projectView = view
	if err := a.config.SetDefaultView(view); err != nil {
		a.logbook.Warn("persist view preference: %v", err)
	}
	return a.currentProjectView().Init()
}

// projectViewModel is the shared surface of the three project views.
type projectViewModel interface {
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View() string
	Refresh() tea.Cmd
	// CapturesText reports whether the view currently owns keyboard input
	// (a focused search box or form), so global hotkeys stand down.
	CapturesText() bool
}

func (a *App) currentProjectView() projectViewModel {
	switch a.projectView {
	case "kanban":
		return a.kanbanView
	case "calendar":
		return a.calendarView
	default:
		return a.tableView
	}
}

func (a *App) showProjects() (tea.Model, tea.Cmd) {
	a.state = stateProjects
	a.statusMsg = ""
	return a, a.currentProjectView().Init()
}

func (a *App) routeToView(msg tea.Msg) tea.Cmd {
	switch a.state {
	case stateLogin:
		return a.loginView.Update(msg)
	case stateProjects:
		return a.currentProjectView().Update(msg)
	case stateProjectDetail:
		if a.detailView != nil {
			return a.detailView.Update(msg)
		}
	}
	return nil
}

// View renders the current state.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}

	var content string
	switch a.state {
	case stateLoading:
		content = "Restoring session..."
	case stateLogin:
		content = a.loginView.View()
	case stateProjects:
		content = a.currentProjectView().View()
	case stateProjectDetail:
		if a.detailView != nil {
			content = a.detailView.View()
		}
	}

	sections := []string{headerStyle.Render("⬡ LONBOARD")}
	if a.expiryWarning {
		sections = append(sections, warningBarStyle.Render("Session expires soon · Ctrl+R to renew"))
	}
	sections = append(sections, panelStyle.Width(max(40, width-2)).Render(content))
	if logPanel := a.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	sections = append(sections, footerStyle.Render(a.renderFooter()))
	return strings.Join(sections, "\n")
}

func (a *App) renderFooter() string {
	parts := []string{}
	if a.statusMsg != "" {
		parts = append(parts, a.statusMsg)
	}
	if user, ok := a.session.User(); ok {
		parts = append(parts, "user: "+user.Username)
	}
	if a.healthLine != "" {
		parts = append(parts, a.healthLine)
	}
	return strings.Join(parts, "    ")
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	lines := a.logbook.Tail(5)
	if len(lines) == 0 {
		return ""
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render("LOG")
	body := dimStyle.Render(strings.Join(lines, "\n"))
	return panelStyle.Render(head + "\n" + body)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
