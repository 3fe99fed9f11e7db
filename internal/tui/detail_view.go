package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lonhq/lonboard/internal/api"
)

type detailMode int

const (
	detailModeBrowse detailMode = iota
	detailModeConfirmDelete
	detailModeNewTask
)

type detailLoadedMsg struct {
	projectID int
	project   api.Project
	tasks     []api.Task
	err       error
}

type taskSavedMsg struct {
	err error
}

type usersLoadedMsg struct {
	users []api.User
	err   error
}

// detailView shows one project and its task list.
type detailView struct {
	app       *App
	projectID int

	project api.Project
	tasks   []api.Task
	cursor  int

	mode      detailMode
	taskInput textinput.Model

	// users is the assignee directory; assigneeIdx 0 means unassigned.
	users       []api.User
	assigneeIdx int

	loading bool
	errMsg  string

	width  int
	height int
}

func newDetailView(app *App, projectID int) *detailView {
	input := textinput.New()
	input.Placeholder = "task title"
	input.CharLimit = 200
	input.Width = 40
	return &detailView{app: app, projectID: projectID, taskInput: input}
}

func (v *detailView) setSize(width, height int) {
	v.width = width
	v.height = height
}

// CapturesText reports whether the view currently owns keyboard input, so
// the root model leaves esc alone until the form or confirm is dismissed.
func (v *detailView) CapturesText() bool {
	return v.mode != detailModeBrowse
}

func (v *detailView) Init() tea.Cmd {
	v.loading = true
	return v.load()
}

func (v *detailView) load() tea.Cmd {
	id := v.projectID
	return func() tea.Msg {
		ctx := context.Background()
		project, err := v.app.store.Projects.Get(ctx, id)
		if err != nil {
			return detailLoadedMsg{projectID: id, err: err}
		}
		tasks, err := v.app.store.Tasks.List(ctx, api.TaskFilter{ProjectID: id})
		return detailLoadedMsg{projectID: id, project: project, tasks: tasks, err: err}
	}
}

func (v *detailView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {

	case detailLoadedMsg:
		if msg.projectID != v.projectID {
			return nil
		}
		v.loading = false
		if msg.err != nil {
			v.errMsg = errorText(msg.err)
			return nil
		}
		v.errMsg = ""
		v.project = msg.project
		v.tasks = msg.tasks
		v.cursor = clamp(v.cursor, 0, max(0, len(v.tasks)-1))
		return nil

	case taskSavedMsg:
		if msg.err != nil {
			v.errMsg = errorText(msg.err)
			return nil
		}
		v.loading = true
		return v.load()

	case usersLoadedMsg:
		if msg.err != nil {
			// The task can still be created unassigned.
			v.app.logbook.Warn("load user directory: %v", msg.err)
			return nil
		}
		v.users = msg.users
		if v.assigneeIdx > len(v.users) {
			v.assigneeIdx = 0
		}
		return nil

	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return nil
}

func (v *detailView) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch v.mode {

	case detailModeConfirmDelete:
		if s := msg.String(); s == "y" || s == "Y" {
			v.mode = detailModeBrowse
			if task, ok := v.selectedTask(); ok {
				return v.removeTask(task.ID)
			}
			return nil
		}
		v.mode = detailModeBrowse
		return nil

	case detailModeNewTask:
		switch msg.String() {
		case "esc":
			v.mode = detailModeBrowse
			v.taskInput.Blur()
			return nil
		case "tab":
			v.cycleAssignee(1)
			return nil
		case "shift+tab":
			v.cycleAssignee(-1)
			return nil
		case "enter":
			title := strings.TrimSpace(v.taskInput.Value())
			if title == "" {
				return nil
			}
			v.mode = detailModeBrowse
			v.taskInput.SetValue("")
			v.taskInput.Blur()
			return v.createTask(title)
		}
		var cmd tea.Cmd
		v.taskInput, cmd = v.taskInput.Update(msg)
		return cmd
	}

	switch msg.String() {
	case "up", "k":
		v.cursor = clamp(v.cursor-1, 0, max(0, len(v.tasks)-1))
	case "down", "j":
		v.cursor = clamp(v.cursor+1, 0, max(0, len(v.tasks)-1))
	case "s":
		// Advance the selected task to the next workflow status.
		if task, ok := v.selectedTask(); ok {
			return v.changeTaskStatus(task.ID, nextTaskStatus(task.Status))
		}
	case "n":
		v.mode = detailModeNewTask
		return tea.Batch(v.taskInput.Focus(), v.loadUsers())
	case "d":
		if _, ok := v.selectedTask(); ok {
			v.mode = detailModeConfirmDelete
		}
	case "r":
		v.app.store.Tasks.Invalidate()
		v.loading = true
		return v.load()
	}
	return nil
}

// nextTaskStatus advances through the workflow and wraps from done to todo.
func nextTaskStatus(status string) string {
	order := api.TaskStatuses()
	for i, s := range order {
		if s == status {
			return order[(i+1)%len(order)]
		}
	}
	return order[0]
}

func (v *detailView) assigneeLabel() string {
	if v.assigneeIdx > 0 && v.assigneeIdx <= len(v.users) {
		return v.users[v.assigneeIdx-1].DisplayName()
	}
	return "(unassigned)"
}

func (v *detailView) selectedTask() (api.Task, bool) {
	if v.cursor < 0 || v.cursor >= len(v.tasks) {
		return api.Task{}, false
	}
	return v.tasks[v.cursor], true
}

func (v *detailView) changeTaskStatus(id int, status string) tea.Cmd {
	return func() tea.Msg {
		_, err := v.app.store.Tasks.ChangeStatus(context.Background(), id, status)
		return taskSavedMsg{err: err}
	}
}

func (v *detailView) loadUsers() tea.Cmd {
	return func() tea.Msg {
		users, err := v.app.store.Users.List(context.Background())
		return usersLoadedMsg{users: users, err: err}
	}
}

// cycleAssignee moves through unassigned plus every known account.
func (v *detailView) cycleAssignee(delta int) {
	n := len(v.users) + 1
	v.assigneeIdx = ((v.assigneeIdx+delta)%n + n) % n
}

// newTaskPayload builds the create payload from the form state.
func (v *detailView) newTaskPayload(title string) api.TaskPayload {
	payload := api.TaskPayload{Title: title, ProjectID: v.projectID, Status: api.TaskStatusTodo}
	if v.assigneeIdx > 0 && v.assigneeIdx <= len(v.users) {
		id := v.users[v.assigneeIdx-1].ID
		payload.AssignedToID = &id
	}
	return payload
}

func (v *detailView) createTask(title string) tea.Cmd {
	payload := v.newTaskPayload(title)
	return func() tea.Msg {
		_, err := v.app.store.Tasks.Create(context.Background(), payload)
		return taskSavedMsg{err: err}
	}
}

func (v *detailView) removeTask(id int) tea.Cmd {
	return func() tea.Msg {
		return taskSavedMsg{err: v.app.store.Tasks.Remove(context.Background(), id)}
	}
}

func (v *detailView) View() string {
	if v.loading && v.project.ID == 0 {
		return dimStyle.Render("Loading project...")
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s  %s\n", v.project.Name, projectStatusStyle(v.project.Status).Render(projectStatusLabel(v.project.Status))))

	meta := []string{}
	if v.project.ClientName != "" {
		meta = append(meta, "client: "+v.project.ClientName)
	}
	if v.project.ManagerName != "" {
		meta = append(meta, "manager: "+v.project.ManagerName)
	}
	if !v.project.EndDate.IsZero() {
		meta = append(meta, "due: "+v.project.EndDate.String())
	}
	meta = append(meta, fmt.Sprintf("progress: %.0f%%", v.project.Progress))
	if v.project.IsDelayed {
		meta = append(meta, errorStyle.Render("delayed"))
	}
	b.WriteString(dimStyle.Render(strings.Join(meta, "  ·  ")) + "\n")

	if stats := v.project.TaskStatistics; len(stats) > 0 {
		parts := make([]string, 0, 4)
		for _, status := range api.TaskStatuses() {
			if n, ok := stats[status]; ok {
				parts = append(parts, fmt.Sprintf("%s %d", taskStatusLabel(status), n))
			}
		}
		b.WriteString(dimStyle.Render(strings.Join(parts, "  ")) + "\n")
	}

	b.WriteString("\nTasks\n")
	if len(v.tasks) == 0 {
		b.WriteString(dimStyle.Render("  No tasks yet.") + "\n")
	}
	for i, task := range v.tasks {
		marker := "  "
		if i == v.cursor {
			marker = "▸ "
		}
		line := fmt.Sprintf("%s%s  %s", marker, taskStatusStyle(task.Status).Render("["+taskStatusLabel(task.Status)+"]"), task.Title)
		if task.AssignedToName != "" {
			line += dimStyle.Render("  @" + task.AssignedToName)
		}
		if !task.EndDate.IsZero() {
			line += dimStyle.Render("  due " + task.EndDate.String())
		}
		b.WriteString(line + "\n")
	}

	if v.errMsg != "" {
		b.WriteString("\n" + errorStyle.Render(v.errMsg))
	}

	switch v.mode {
	case detailModeNewTask:
		b.WriteString("\n" + v.taskInput.View())
		b.WriteString("\n" + dimStyle.Render("assignee: "+v.assigneeLabel()))
		b.WriteString("\n" + hintStyle.Render("enter: create task · tab: assignee · esc: cancel"))
	case detailModeConfirmDelete:
		if task, ok := v.selectedTask(); ok {
			b.WriteString("\n" + warningBarStyle.Render(fmt.Sprintf("Delete task %q? y/n", task.Title)))
		}
	default:
		b.WriteString("\n" + hintStyle.Render("j/k: tasks · s: advance status · n: new task · d: delete · r: reload · esc: back"))
	}
	return b.String()
}
