package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lonhq/lonboard/internal/api"
)

// loginDoneMsg tells the root model a login succeeded.
type loginDoneMsg struct{}

type loginFailedMsg struct {
	err error
}

// loginView is the credentials form. It owns the two text inputs and the
// in-flight flag; the root model decides what happens after success.
type loginView struct {
	app      *App
	username textinput.Model
	password textinput.Model
	focused  int
	busy     bool
	errMsg   string
}

func newLoginView(app *App) *loginView {
	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 150
	username.Width = 32

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128
	password.Width = 32

	return &loginView{app: app, username: username, password: password}
}

func (v *loginView) Init() tea.Cmd {
	v.username.SetValue("")
	v.password.SetValue("")
	v.errMsg = ""
	v.busy = false
	v.focused = 0
	v.password.Blur()
	return v.username.Focus()
}

func (v *loginView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {

	case loginFailedMsg:
		v.busy = false
		v.errMsg = loginErrorText(msg.err)
		return nil

	case tea.KeyMsg:
		if v.busy {
			return nil
		}
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			return v.cycleFocus()
		case "enter":
			if v.focused == 0 {
				return v.cycleFocus()
			}
			return v.submit()
		}
	}

	var cmd tea.Cmd
	if v.focused == 0 {
		v.username, cmd = v.username.Update(msg)
	} else {
		v.password, cmd = v.password.Update(msg)
	}
	return cmd
}

func (v *loginView) cycleFocus() tea.Cmd {
	if v.focused == 0 {
		v.focused = 1
		v.username.Blur()
		return v.password.Focus()
	}
	v.focused = 0
	v.password.Blur()
	return v.username.Focus()
}

func (v *loginView) submit() tea.Cmd {
	username := strings.TrimSpace(v.username.Value())
	password := v.password.Value()
	if username == "" || password == "" {
		v.errMsg = "Username and password are required"
		return nil
	}
	v.busy = true
	v.errMsg = ""
	return func() tea.Msg {
		if err := v.app.session.Login(context.Background(), username, password); err != nil {
			return loginFailedMsg{err: err}
		}
		return loginDoneMsg{}
	}
}

func (v *loginView) View() string {
	var b strings.Builder
	b.WriteString("Sign in\n\n")
	b.WriteString("  " + v.username.View() + "\n")
	b.WriteString("  " + v.password.View() + "\n")
	if v.busy {
		b.WriteString("\n  " + dimStyle.Render("Signing in..."))
	}
	if v.errMsg != "" {
		b.WriteString("\n  " + errorStyle.Render(v.errMsg))
	}
	b.WriteString("\n\n" + hintStyle.Render("tab: switch field · enter: submit · ctrl+c: quit"))
	return b.String()
}

// loginErrorText turns the error taxonomy into something a person reads.
func loginErrorText(err error) string {
	switch {
	case api.IsAuth(err):
		return "Invalid username or password"
	case api.IsKind(err, api.KindTransport):
		return "Cannot reach the backend"
	case api.IsKind(err, api.KindValidation):
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			return "Check your input: " + apiErr.FieldSummary()
		}
		return "Check your input"
	default:
		return "Login failed: " + err.Error()
	}
}
