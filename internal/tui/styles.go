package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/lonhq/lonboard/internal/api"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF")).
			MarginBottom(1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA")).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4CAF50"))

	warningBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1A1A1A")).
			Background(lipgloss.Color("#F7B801")).
			Padding(0, 1)

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))

	selectedCardStyle = lipgloss.NewStyle().
				Bold(true).
				Border(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("#5B8DEF")).
				Padding(0, 1)

	liftedCardStyle = lipgloss.NewStyle().
			Bold(true).
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#F7B801")).
			Padding(0, 1)
)

var projectStatusLabels = map[string]string{
	api.ProjectStatusNew:        "New",
	api.ProjectStatusSigned:     "Signed",
	api.ProjectStatusInProgress: "In Progress",
	api.ProjectStatusPaid:       "Paid",
	api.ProjectStatusLost:       "Lost",
}

var projectStatusColors = map[string]lipgloss.Color{
	api.ProjectStatusNew:        lipgloss.Color("#5B8DEF"),
	api.ProjectStatusSigned:     lipgloss.Color("#9B59B6"),
	api.ProjectStatusInProgress: lipgloss.Color("#F7B801"),
	api.ProjectStatusPaid:       lipgloss.Color("#4CAF50"),
	api.ProjectStatusLost:       lipgloss.Color("#FF6B6B"),
}

var taskStatusLabels = map[string]string{
	api.TaskStatusTodo:       "To Do",
	api.TaskStatusInProgress: "In Progress",
	api.TaskStatusReview:     "Review",
	api.TaskStatusDone:       "Done",
}

var taskStatusColors = map[string]lipgloss.Color{
	api.TaskStatusTodo:       lipgloss.Color("#5B8DEF"),
	api.TaskStatusInProgress: lipgloss.Color("#F7B801"),
	api.TaskStatusReview:     lipgloss.Color("#9B59B6"),
	api.TaskStatusDone:       lipgloss.Color("#4CAF50"),
}

// projectStatusLabel maps a status code to its board label.
func projectStatusLabel(status string) string {
	if label, ok := projectStatusLabels[status]; ok {
		return label
	}
	return status
}

// taskStatusLabel maps a task status to its display label.
func taskStatusLabel(status string) string {
	if label, ok := taskStatusLabels[status]; ok {
		return label
	}
	return status
}

func projectStatusStyle(status string) lipgloss.Style {
	color, ok := projectStatusColors[status]
	if !ok {
		color = lipgloss.Color("#CCCCCC")
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true)
}

func taskStatusStyle(status string) lipgloss.Style {
	color, ok := taskStatusColors[status]
	if !ok {
		color = lipgloss.Color("#CCCCCC")
	}
	return lipgloss.NewStyle().Foreground(color)
}
