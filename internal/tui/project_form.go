package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lonhq/lonboard/internal/api"
)

type clientsLoadedMsg struct {
	clients []api.Customer
	err     error
}

// Focus slots: the three text inputs, then the client selector.
const (
	formFieldName = iota
	formFieldStart
	formFieldEnd
	formFieldClient
	formFieldCount
)

// projectForm is the new-project form: name, optional dates and a client
// picked from the customer directory. Everything else is edited on the
// backend's own admin surface.
type projectForm struct {
	app     *App
	inputs  []textinput.Model
	focused int

	// clients is the customer directory; clientIdx 0 means no client.
	clients   []api.Customer
	clientIdx int

	busy   bool
	errMsg string
}

func newProjectForm(app *App) *projectForm {
	name := textinput.New()
	name.Placeholder = "project name"
	name.CharLimit = 200
	name.Width = 40

	start := textinput.New()
	start.Placeholder = "start date (YYYY-MM-DD, optional)"
	start.CharLimit = 10
	start.Width = 40

	end := textinput.New()
	end.Placeholder = "end date (YYYY-MM-DD, optional)"
	end.CharLimit = 10
	end.Width = 40

	return &projectForm{app: app, inputs: []textinput.Model{name, start, end}}
}

func (f *projectForm) Init() tea.Cmd {
	return tea.Batch(f.inputs[formFieldName].Focus(), f.loadClients())
}

func (f *projectForm) loadClients() tea.Cmd {
	return func() tea.Msg {
		clients, err := f.app.store.Clients.List(context.Background())
		return clientsLoadedMsg{clients: clients, err: err}
	}
}

// applyClients installs the directory once it arrives. A failed fetch leaves
// the picker empty; the project can still be created without a client.
func (f *projectForm) applyClients(msg clientsLoadedMsg) {
	if msg.err != nil {
		f.app.logbook.Warn("load client directory: %v", msg.err)
		return
	}
	f.clients = msg.clients
	if f.clientIdx > len(f.clients) {
		f.clientIdx = 0
	}
}

// selectedClientID returns the picked customer's id, or zero for none.
func (f *projectForm) selectedClientID() int {
	if f.clientIdx == 0 || f.clientIdx > len(f.clients) {
		return 0
	}
	return f.clients[f.clientIdx-1].ID
}

// cycleClient moves the picker through none plus every known customer.
func (f *projectForm) cycleClient(delta int) {
	n := len(f.clients) + 1
	f.clientIdx = ((f.clientIdx+delta)%n + n) % n
}

// handleKey returns done=true when the form should close.
func (f *projectForm) handleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	if f.busy {
		return false, nil
	}
	switch msg.String() {
	case "esc":
		return true, nil
	case "tab", "down":
		return false, f.focus(f.focused + 1)
	case "shift+tab", "up":
		return false, f.focus(f.focused - 1)
	case "enter":
		if f.focused < formFieldCount-1 {
			return false, f.focus(f.focused + 1)
		}
		return false, f.submit()
	}

	if f.focused == formFieldClient {
		switch msg.String() {
		case "left", "h":
			f.cycleClient(-1)
		case "right", "l":
			f.cycleClient(1)
		}
		return false, nil
	}

	var cmd tea.Cmd
	f.inputs[f.focused], cmd = f.inputs[f.focused].Update(msg)
	return false, cmd
}

func (f *projectForm) focus(idx int) tea.Cmd {
	if idx < 0 {
		idx = formFieldCount - 1
	}
	idx %= formFieldCount
	if f.focused < len(f.inputs) {
		f.inputs[f.focused].Blur()
	}
	f.focused = idx
	if idx < len(f.inputs) {
		return f.inputs[idx].Focus()
	}
	return nil
}

func (f *projectForm) submit() tea.Cmd {
	payload := api.ProjectPayload{
		Name:   strings.TrimSpace(f.inputs[formFieldName].Value()),
		Client: f.selectedClientID(),
	}

	start, err := api.ParseDate(f.inputs[formFieldStart].Value())
	if err != nil {
		f.errMsg = "Start date must be YYYY-MM-DD"
		return nil
	}
	end, err := api.ParseDate(f.inputs[formFieldEnd].Value())
	if err != nil {
		f.errMsg = "End date must be YYYY-MM-DD"
		return nil
	}
	payload.StartDate = start
	payload.EndDate = end

	if err := payload.Validate(); err != nil {
		f.errMsg = "Project name is required"
		return nil
	}

	f.busy = true
	f.errMsg = ""
	return func() tea.Msg {
		project, err := f.app.store.Projects.Create(context.Background(), payload)
		return projectCreatedMsg{project: project, err: err}
	}
}

func (f *projectForm) View() string {
	var b strings.Builder
	b.WriteString("New project\n\n")
	for _, input := range f.inputs {
		b.WriteString("  " + input.View() + "\n")
	}
	b.WriteString("  " + f.clientLine() + "\n")
	if f.busy {
		b.WriteString("\n  " + dimStyle.Render("Creating..."))
	}
	if f.errMsg != "" {
		b.WriteString("\n  " + errorStyle.Render(f.errMsg))
	}
	b.WriteString("\n\n" + hintStyle.Render("tab: next field · ←/→: pick client · enter: submit · esc: cancel"))
	return b.String()
}

func (f *projectForm) clientLine() string {
	label := "(no client)"
	if f.clientIdx > 0 && f.clientIdx <= len(f.clients) {
		label = f.clients[f.clientIdx-1].Name
	}
	line := "client: " + label + "  ◂ ▸"
	if f.focused == formFieldClient {
		return successStyle.Render(line)
	}
	return dimStyle.Render(line)
}
