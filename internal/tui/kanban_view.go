package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lonhq/lonboard/internal/api"
)

type kanbanLoadedMsg struct {
	projects []api.Project
	err      error
}

type statusSavedMsg struct {
	id        int
	newStatus string
	err       error
}

// kanbanColumn is one status lane on the board.
type kanbanColumn struct {
	status   string
	projects []api.Project
}

// lift tracks a picked-up card so a cancelled move can go home.
type lift struct {
	col        int
	row        int
	originCol  int
	prevStatus string
}

// kanbanView is the status board. Moves are optimistic: the card lands in
// its new column immediately and the PATCH runs afterwards; a failed PATCH
// rolls the board back to the server's truth by invalidating the cache and
// refetching.
type kanbanView struct {
	app     *App
	columns []kanbanColumn
	col     int
	row     int
	lifted  *lift

	loading bool
	errMsg  string

	width  int
	height int
}

func newKanbanView(app *App) *kanbanView {
	return &kanbanView{app: app, columns: emptyColumns()}
}

func emptyColumns() []kanbanColumn {
	statuses := api.ProjectStatuses()
	columns := make([]kanbanColumn, len(statuses))
	for i, status := range statuses {
		columns[i] = kanbanColumn{status: status}
	}
	return columns
}

// buildColumns buckets projects into status lanes, preserving list order.
// Unknown statuses are dropped rather than invent a lane.
func buildColumns(projects []api.Project) []kanbanColumn {
	columns := emptyColumns()
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		index[c.status] = i
	}
	for _, p := range projects {
		i, ok := index[p.Status]
		if !ok {
			continue
		}
		columns[i].projects = append(columns[i].projects, p)
	}
	return columns
}

// moveCard relocates a card between lanes, rewriting its status to the
// destination lane's. This is the optimistic step the board applies before
// the network resolves.
func moveCard(columns []kanbanColumn, fromCol, fromRow, toCol int) (int, bool) {
	if fromCol < 0 || fromCol >= len(columns) || toCol < 0 || toCol >= len(columns) {
		return 0, false
	}
	src := &columns[fromCol]
	if fromRow < 0 || fromRow >= len(src.projects) {
		return 0, false
	}
	card := src.projects[fromRow]
	src.projects = append(src.projects[:fromRow], src.projects[fromRow+1:]...)

	card.Status = columns[toCol].status
	card.StatusDisplay = projectStatusLabel(card.Status)
	columns[toCol].projects = append(columns[toCol].projects, card)
	return len(columns[toCol].projects) - 1, true
}

func (v *kanbanView) setSize(width, height int) {
	v.width = width
	v.height = height
}

func (v *kanbanView) Init() tea.Cmd {
	v.loading = true
	v.errMsg = ""
	v.lifted = nil
	return v.load()
}

func (v *kanbanView) Refresh() tea.Cmd {
	v.loading = true
	return v.load()
}

func (v *kanbanView) CapturesText() bool { return false }

func (v *kanbanView) load() tea.Cmd {
	return func() tea.Msg {
		projects, err := v.app.store.Projects.List(context.Background(), api.ProjectFilter{})
		return kanbanLoadedMsg{projects: projects, err: err}
	}
}

func (v *kanbanView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {

	case kanbanLoadedMsg:
		v.loading = false
		if msg.err != nil {
			v.errMsg = errorText(msg.err)
			return nil
		}
		v.errMsg = ""
		v.columns = buildColumns(msg.projects)
		v.lifted = nil
		v.clampCursor()
		return nil

	case statusSavedMsg:
		if msg.err != nil {
			// Roll back: the server never accepted the move, so drop the
			// optimistic board and refetch.
			v.errMsg = "Move failed: " + errorText(msg.err)
			v.app.store.Projects.Invalidate()
			return v.Refresh()
		}
		v.app.statusMsg = fmt.Sprintf("Project #%d → %s", msg.id, projectStatusLabel(msg.newStatus))
		return nil

	case tea.KeyMsg:
		return v.handleKey(msg)
	}

	return nil
}

func (v *kanbanView) handleKey(msg tea.KeyMsg) tea.Cmd {
	if v.lifted != nil {
		return v.handleLiftedKey(msg)
	}

	switch msg.String() {
	case "left", "h":
		v.col = clamp(v.col-1, 0, len(v.columns)-1)
		v.clampCursor()
	case "right", "l":
		v.col = clamp(v.col+1, 0, len(v.columns)-1)
		v.clampCursor()
	case "up", "k":
		v.row = clamp(v.row-1, 0, maxRow(v.columns[v.col]))
	case "down", "j":
		v.row = clamp(v.row+1, 0, maxRow(v.columns[v.col]))
	case " ", "enter":
		v.pickUp()
	case "o":
		if card, ok := v.cardAt(v.col, v.row); ok {
			id := card.ID
			return func() tea.Msg { return openProjectMsg{id: id} }
		}
	case "r":
		v.app.store.Projects.Invalidate()
		return v.Refresh()
	}
	return nil
}

func (v *kanbanView) handleLiftedKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "left", "h":
		v.shiftLifted(-1)
	case "right", "l":
		v.shiftLifted(1)
	case "esc":
		// Put the card back where it came from.
		if row, ok := moveCard(v.columns, v.lifted.col, v.lifted.row, v.lifted.originCol); ok {
			v.col = v.lifted.originCol
			v.row = row
		}
		v.lifted = nil
	case " ", "enter":
		return v.drop()
	}
	return nil
}

func (v *kanbanView) pickUp() {
	if _, ok := v.cardAt(v.col, v.row); !ok {
		return
	}
	v.lifted = &lift{
		col:        v.col,
		row:        v.row,
		originCol:  v.col,
		prevStatus: v.columns[v.col].status,
	}
}

func (v *kanbanView) shiftLifted(delta int) {
	target := clamp(v.lifted.col+delta, 0, len(v.columns)-1)
	if target == v.lifted.col {
		return
	}
	if row, ok := moveCard(v.columns, v.lifted.col, v.lifted.row, target); ok {
		v.lifted.col = target
		v.lifted.row = row
		v.col = target
		v.row = row
	}
}

// drop commits the lifted card. The board already shows the card in its new
// lane; only now does the PATCH go out.
func (v *kanbanView) drop() tea.Cmd {
	lifted := v.lifted
	v.lifted = nil
	card, ok := v.cardAt(lifted.col, lifted.row)
	if !ok {
		return nil
	}
	if card.Status == lifted.prevStatus {
		return nil
	}
	id, status := card.ID, card.Status
	return func() tea.Msg {
		_, err := v.app.store.Projects.ChangeStatus(context.Background(), id, status)
		return statusSavedMsg{id: id, newStatus: status, err: err}
	}
}

func (v *kanbanView) cardAt(col, row int) (api.Project, bool) {
	if col < 0 || col >= len(v.columns) {
		return api.Project{}, false
	}
	projects := v.columns[col].projects
	if row < 0 || row >= len(projects) {
		return api.Project{}, false
	}
	return projects[row], true
}

func (v *kanbanView) clampCursor() {
	v.col = clamp(v.col, 0, len(v.columns)-1)
	v.row = clamp(v.row, 0, maxRow(v.columns[v.col]))
}

func maxRow(column kanbanColumn) int {
	return max(0, len(column.projects)-1)
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

func (v *kanbanView) View() string {
	if v.loading && v.boardEmpty() {
		return "Projects · kanban\n\n" + dimStyle.Render("Loading board...")
	}

	colWidth := 22
	if v.width > 0 {
		colWidth = max(18, (v.width-len(v.columns)*3)/len(v.columns))
	}

	rendered := make([]string, 0, len(v.columns))
	for ci, column := range v.columns {
		rendered = append(rendered, v.renderColumn(ci, column, colWidth))
	}
	board := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)

	var b strings.Builder
	b.WriteString("Projects · kanban\n\n")
	b.WriteString(board)
	if v.errMsg != "" {
		b.WriteString("\n" + errorStyle.Render(v.errMsg))
	}
	if v.lifted != nil {
		b.WriteString("\n" + hintStyle.Render("h/l: move card · enter: drop · esc: cancel"))
	} else {
		b.WriteString("\n" + hintStyle.Render("h/j/k/l: navigate · enter: pick up · o: open · r: reload · 1/2/3: view · q: quit"))
	}
	return b.String()
}

func (v *kanbanView) renderColumn(ci int, column kanbanColumn, width int) string {
	title := projectStatusStyle(column.status).Render(
		fmt.Sprintf("%s (%d)", projectStatusLabel(column.status), len(column.projects)))

	lines := []string{title}
	for ri, p := range column.projects {
		label := truncate(p.Name, width-4)
		switch {
		case v.lifted != nil && ci == v.lifted.col && ri == v.lifted.row:
			label = liftedCardStyle.Render("◆ " + label)
		case v.lifted == nil && ci == v.col && ri == v.row:
			label = selectedCardStyle.Render("▸ " + label)
		default:
			label = "  " + label
		}
		lines = append(lines, label)
		if p.ClientName != "" {
			lines = append(lines, dimStyle.Render("    "+truncate(p.ClientName, width-6)))
		}
	}
	if len(column.projects) == 0 {
		lines = append(lines, dimStyle.Render("  —"))
	}

	return panelStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func (v *kanbanView) boardEmpty() bool {
	for _, c := range v.columns {
		if len(c.projects) > 0 {
			return false
		}
	}
	return true
}

func truncate(s string, width int) string {
	if width <= 1 || len(s) <= width {
		return s
	}
	return s[:width-1] + "…"
}
