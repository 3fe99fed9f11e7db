package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lonhq/lonboard/internal/api"
)

func boardProjects() []api.Project {
	return []api.Project{
		{ID: 1, Name: "Harbor Renovation", Status: api.ProjectStatusNew},
		{ID: 2, Name: "Depot Extension", Status: api.ProjectStatusNew},
		{ID: 3, Name: "Quay Wall", Status: api.ProjectStatusSigned},
		{ID: 4, Name: "Crane Refit", Status: api.ProjectStatusInProgress},
	}
}

func TestBuildColumnsBucketsByStatus(t *testing.T) {
	columns := buildColumns(boardProjects())
	if got, want := len(columns), len(api.ProjectStatuses()); got != want {
		t.Fatalf("expected %d columns, got %d", want, got)
	}
	if got := len(columns[0].projects); got != 2 {
		t.Fatalf("expected 2 projects in NEW, got %d", got)
	}
	if got := columns[1].projects[0].ID; got != 3 {
		t.Fatalf("expected project 3 in SIGNED, got %d", got)
	}
	if got := len(columns[4].projects); got != 0 {
		t.Fatalf("expected empty LOST column, got %d entries", got)
	}
}

func TestBuildColumnsDropsUnknownStatus(t *testing.T) {
	columns := buildColumns([]api.Project{{ID: 9, Name: "Ghost", Status: "ARCHIVED"}})
	for _, column := range columns {
		if len(column.projects) != 0 {
			t.Fatalf("unknown status must not land in %s", column.status)
		}
	}
}

func TestMoveCardRewritesStatus(t *testing.T) {
	columns := buildColumns(boardProjects())
	row, ok := moveCard(columns, 0, 0, 2)
	if !ok {
		t.Fatalf("expected move to succeed")
	}
	moved := columns[2].projects[row]
	if moved.ID != 1 {
		t.Fatalf("expected project 1 to move, got %d", moved.ID)
	}
	if moved.Status != api.ProjectStatusInProgress {
		t.Fatalf("expected status rewrite to IN_PROGRESS, got %s", moved.Status)
	}
	if got := len(columns[0].projects); got != 1 {
		t.Fatalf("expected source column to shrink to 1, got %d", got)
	}
}

func TestMoveCardRejectsOutOfRange(t *testing.T) {
	columns := buildColumns(boardProjects())
	if _, ok := moveCard(columns, 0, 7, 1); ok {
		t.Fatalf("expected out-of-range row to be rejected")
	}
	if _, ok := moveCard(columns, -1, 0, 1); ok {
		t.Fatalf("expected negative column to be rejected")
	}
}

func TestDropAppliesMoveBeforeNetworkResolves(t *testing.T) {
	view := &kanbanView{columns: buildColumns(boardProjects())}
	view.col, view.row = 0, 0
	view.pickUp()
	if view.lifted == nil {
		t.Fatalf("expected card to be lifted")
	}
	view.shiftLifted(1)
	view.shiftLifted(1)

	// The board already shows the card in its destination lane, even though
	// the save command has not been executed.
	if got := view.columns[2].projects[len(view.columns[2].projects)-1].ID; got != 1 {
		t.Fatalf("expected project 1 in IN_PROGRESS before save, got %d", got)
	}

	cmd := view.drop()
	if cmd == nil {
		t.Fatalf("expected a save command for a cross-column drop")
	}
	if view.lifted != nil {
		t.Fatalf("expected lift to clear on drop")
	}
	card, ok := view.cardAt(2, view.row)
	if !ok || card.Status != api.ProjectStatusInProgress {
		t.Fatalf("expected optimistic status on dropped card, got %+v", card)
	}
}

func TestDropInPlaceSkipsNetwork(t *testing.T) {
	view := &kanbanView{columns: buildColumns(boardProjects())}
	view.col, view.row = 0, 0
	view.pickUp()
	if cmd := view.drop(); cmd != nil {
		t.Fatalf("expected no save command when the card never left its lane")
	}
}

func TestEscRestoresLiftedCard(t *testing.T) {
	view := &kanbanView{columns: buildColumns(boardProjects())}
	view.col, view.row = 0, 0
	view.pickUp()
	view.shiftLifted(2)
	view.handleLiftedKey(tea.KeyMsg{Type: tea.KeyEsc})

	if view.lifted != nil {
		t.Fatalf("expected lift to clear on esc")
	}
	if got := len(view.columns[0].projects); got != 2 {
		t.Fatalf("expected card back in NEW, column has %d", got)
	}
	restored := view.columns[0].projects[len(view.columns[0].projects)-1]
	if restored.ID != 1 || restored.Status != api.ProjectStatusNew {
		t.Fatalf("expected original status restored, got %+v", restored)
	}
}
