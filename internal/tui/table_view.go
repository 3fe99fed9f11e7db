package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lonhq/lonboard/internal/api"
)

// tableMode tracks which input surface owns the keyboard.
type tableMode int

const (
	tableModeBrowse tableMode = iota
	tableModeSearch
	tableModeConfirmDelete
	tableModeCreate
)

type projectsLoadedMsg struct {
	projects []api.Project
	err      error
}

type projectDeletedMsg struct {
	id  int
	err error
}

type projectCreatedMsg struct {
	project api.Project
	err     error
}

// tableView lists projects with search, a status filter and a managed-only
// toggle. Reads go through the resource store, so repeat visits render from
// cache.
type tableView struct {
	app   *App
	table table.Model

	mode    tableMode
	search  textinput.Model
	managed bool
	// statusIdx indexes projectStatusFilters; zero means no filter.
	statusIdx int

	form *projectForm

	projects []api.Project
	loading  bool
	errMsg   string

	width  int
	height int
}

// projectStatusFilters is the status cycle for the "s" key, with "" first for
// the unfiltered view.
var projectStatusFilters = append([]string{""}, api.ProjectStatuses()...)

func newTableView(app *App) *tableView {
	search := textinput.New()
	search.Placeholder = "search projects"
	search.CharLimit = 120
	search.Width = 36

	columns := []table.Column{
		{Title: "Project", Width: 28},
		{Title: "Status", Width: 12},
		{Title: "Client", Width: 18},
		{Title: "Manager", Width: 16},
		{Title: "End", Width: 10},
		{Title: "Progress", Width: 8},
	}
	tbl := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	return &tableView{app: app, table: tbl, search: search}
}

func (v *tableView) setSize(width, height int) {
	v.width = width
	v.height = height
	if height > 14 {
		v.table.SetHeight(height - 14)
	}
}

func (v *tableView) Init() tea.Cmd {
	v.mode = tableModeBrowse
	v.loading = true
	v.errMsg = ""
	return v.load()
}

// Refresh reloads through the cache without resetting the view's filters.
func (v *tableView) Refresh() tea.Cmd {
	v.loading = true
	return v.load()
}

func (v *tableView) CapturesText() bool {
	return v.mode == tableModeSearch || v.mode == tableModeCreate
}

func (v *tableView) filter() api.ProjectFilter {
	return api.ProjectFilter{
		Search: strings.TrimSpace(v.search.Value()),
		Status: projectStatusFilters[v.statusIdx],
	}
}

func (v *tableView) load() tea.Cmd {
	managed := v.managed
	filter := v.filter()
	return func() tea.Msg {
		var (
			projects []api.Project
			err      error
		)
		if managed {
			projects, err = v.app.store.Projects.Managed(context.Background())
		} else {
			projects, err = v.app.store.Projects.List(context.Background(), filter)
		}
		return projectsLoadedMsg{projects: projects, err: err}
	}
}

func (v *tableView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {

	case projectsLoadedMsg:
		v.loading = false
		if msg.err != nil {
			v.errMsg = errorText(msg.err)
			return nil
		}
		v.errMsg = ""
		v.projects = msg.projects
		v.rebuildRows()
		return nil

	case projectDeletedMsg:
		if msg.err != nil {
			v.errMsg = "Delete failed: " + errorText(msg.err)
			return nil
		}
		v.app.statusMsg = fmt.Sprintf("Project #%d deleted", msg.id)
		return v.Refresh()

	case clientsLoadedMsg:
		if v.form != nil {
			v.form.applyClients(msg)
		}
		return nil

	case projectCreatedMsg:
		v.mode = tableModeBrowse
		v.form = nil
		if msg.err != nil {
			v.errMsg = "Create failed: " + errorText(msg.err)
			return nil
		}
		v.app.statusMsg = "Created " + msg.project.Name
		return v.Refresh()

	case tea.KeyMsg:
		return v.handleKey(msg)
	}

	return nil
}

func (v *tableView) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch v.mode {

	case tableModeSearch:
		switch msg.String() {
		case "enter":
			v.mode = tableModeBrowse
			v.search.Blur()
			return v.Refresh()
		case "esc":
			v.mode = tableModeBrowse
			v.search.SetValue("")
			v.search.Blur()
			return v.Refresh()
		}
		var cmd tea.Cmd
		v.search, cmd = v.search.Update(msg)
		return cmd

	case tableModeConfirmDelete:
		switch msg.String() {
		case "y", "Y":
			v.mode = tableModeBrowse
			if project, ok := v.selected(); ok {
				return v.deleteProject(project.ID)
			}
		default:
			v.mode = tableModeBrowse
		}
		return nil

	case tableModeCreate:
		done, cmd := v.form.handleKey(msg)
		if done {
			v.mode = tableModeBrowse
			v.form = nil
		}
		return cmd
	}

	// Browse mode.
	switch msg.String() {
	case "/":
		v.mode = tableModeSearch
		return v.search.Focus()
	case "m":
		v.managed = !v.managed
		return v.Refresh()
	case "s":
		v.statusIdx = (v.statusIdx + 1) % len(projectStatusFilters)
		return v.Refresh()
	case "n":
		v.form = newProjectForm(v.app)
		v.mode = tableModeCreate
		return v.form.Init()
	case "d":
		if _, ok := v.selected(); ok {
			v.mode = tableModeConfirmDelete
		}
		return nil
	case "r":
		v.app.store.Projects.Invalidate()
		return v.Refresh()
	case "enter":
		if project, ok := v.selected(); ok {
			return func() tea.Msg { return openProjectMsg{id: project.ID} }
		}
		return nil
	}

	var cmd tea.Cmd
	v.table, cmd = v.table.Update(msg)
	return cmd
}

func (v *tableView) deleteProject(id int) tea.Cmd {
	return func() tea.Msg {
		err := v.app.store.Projects.Remove(context.Background(), id)
		return projectDeletedMsg{id: id, err: err}
	}
}

func (v *tableView) selected() (api.Project, bool) {
	idx := v.table.Cursor()
	if idx < 0 || idx >= len(v.projects) {
		return api.Project{}, false
	}
	return v.projects[idx], true
}

func (v *tableView) rebuildRows() {
	rows := make([]table.Row, 0, len(v.projects))
	for _, p := range v.projects {
		progress := fmt.Sprintf("%.0f%%", p.Progress)
		if p.IsDelayed {
			progress += " !"
		}
		rows = append(rows, table.Row{
			p.Name,
			projectStatusLabel(p.Status),
			p.ClientName,
			p.ManagerName,
			p.EndDate.String(),
			progress,
		})
	}
	v.table.SetRows(rows)
	if v.table.Cursor() >= len(rows) && len(rows) > 0 {
		v.table.SetCursor(len(rows) - 1)
	}
}

func (v *tableView) View() string {
	if v.mode == tableModeCreate && v.form != nil {
		return v.form.View()
	}

	var b strings.Builder
	b.WriteString(v.headerLine() + "\n\n")

	switch {
	case v.loading && len(v.projects) == 0:
		b.WriteString(dimStyle.Render("Loading projects..."))
	case len(v.projects) == 0:
		b.WriteString(dimStyle.Render("No projects match."))
	default:
		b.WriteString(v.table.View())
	}

	if v.errMsg != "" {
		b.WriteString("\n" + errorStyle.Render(v.errMsg))
	}

	switch v.mode {
	case tableModeSearch:
		b.WriteString("\n\n" + v.search.View())
		b.WriteString("\n" + hintStyle.Render("enter: apply search · esc: clear"))
	case tableModeConfirmDelete:
		if project, ok := v.selected(); ok {
			b.WriteString("\n\n" + warningBarStyle.Render(fmt.Sprintf("Delete %q? y/n", project.Name)))
		}
	default:
		b.WriteString("\n\n" + hintStyle.Render("enter: open · /: search · s: status · m: mine · n: new · d: delete · r: reload · 1/2/3: view · ctrl+l: sign out · q: quit"))
	}
	return b.String()
}

func (v *tableView) headerLine() string {
	parts := []string{"Projects · table"}
	if v.managed {
		parts = append(parts, "managed by me")
	}
	if status := projectStatusFilters[v.statusIdx]; status != "" {
		parts = append(parts, "status: "+projectStatusLabel(status))
	}
	if q := strings.TrimSpace(v.search.Value()); q != "" {
		parts = append(parts, "search: "+q)
	}
	return strings.Join(parts, "  ·  ")
}

// errorText is the shared error renderer for list and mutation failures.
func errorText(err error) string {
	switch {
	case api.IsKind(err, api.KindTransport):
		return "Backend unreachable"
	case api.IsNotFound(err):
		return "Not found"
	case api.IsKind(err, api.KindServer):
		return "Backend error"
	default:
		return err.Error()
	}
}
