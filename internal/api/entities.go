package api

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Project status workflow, in board order.
const (
	ProjectStatusNew        = "NEW"
	ProjectStatusSigned     = "SIGNED"
	ProjectStatusInProgress = "IN_PROGRESS"
	ProjectStatusPaid       = "PAID"
	ProjectStatusLost       = "LOST"
)

// Task status workflow.
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusReview     = "review"
	TaskStatusDone       = "done"
)

// ProjectStatuses returns the kanban column order.
func ProjectStatuses() []string {
	return []string{ProjectStatusNew, ProjectStatusSigned, ProjectStatusInProgress, ProjectStatusPaid, ProjectStatusLost}
}

// TaskStatuses returns the task workflow order.
func TaskStatuses() []string {
	return []string{TaskStatusTodo, TaskStatusInProgress, TaskStatusReview, TaskStatusDone}
}

// ValidProjectStatus reports whether s is a known project status.
func ValidProjectStatus(s string) bool {
	for _, status := range ProjectStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// ValidTaskStatus reports whether s is a known task status.
func ValidTaskStatus(s string) bool {
	for _, status := range TaskStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// Date is a calendar day that crosses the wire as YYYY-MM-DD. The backend
// sends null or omits the field for open-ended ranges.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// NewDate builds a Date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate reads the wire format. An empty string yields the zero Date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	parsed, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("api: parse date %q: %w", s, err)
	}
	return Date{parsed}, nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(dateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil || strings.TrimSpace(*raw) == "" {
		d.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(dateLayout, *raw)
	if err != nil {
		return fmt.Errorf("api: parse date %q: %w", *raw, err)
	}
	d.Time = parsed
	return nil
}

// String renders the wire format, or empty for unset dates.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// User is a backend account, as embedded in projects and tasks.
type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// DisplayName prefers the full name and falls back to the username.
func (u User) DisplayName() string {
	full := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if full != "" {
		return full
	}
	return u.Username
}

// Customer is a customer a project is billed to.
type Customer struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Address     string    `json:"address,omitempty"`
	CompanyName string    `json:"company_name,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// Project mirrors the backend's read serializer.
type Project struct {
	ID             int            `json:"id"`
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	Location       string         `json:"location,omitempty"`
	StartDate      Date           `json:"start_date,omitempty"`
	EndDate        Date           `json:"end_date,omitempty"`
	Status         string         `json:"status"`
	StatusDisplay  string         `json:"status_display,omitempty"`
	Budget         string         `json:"budget,omitempty"`
	Manager        *User          `json:"manager,omitempty"`
	ManagerName    string         `json:"manager_name,omitempty"`
	TeamMembers    []User         `json:"team_members,omitempty"`
	ClientID       int            `json:"client,omitempty"`
	ClientName     string         `json:"client_name,omitempty"`
	ClientDetails  *Client        `json:"client_details,omitempty"`
	Progress       float64        `json:"progress,omitempty"`
	IsDelayed      bool           `json:"is_delayed,omitempty"`
	TaskStatistics map[string]int `json:"task_statistics,omitempty"`
	CreatedAt      time.Time      `json:"created_at,omitempty"`
	UpdatedAt      time.Time      `json:"updated_at,omitempty"`
}

// ProjectPayload is the write shape for creates and updates.
type ProjectPayload struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Client      int    `json:"client,omitempty"`
	Location    string `json:"location,omitempty"`
	StartDate   Date   `json:"start_date,omitempty"`
	EndDate     Date   `json:"end_date,omitempty"`
	Status      string `json:"status,omitempty"`
	Budget      string `json:"budget,omitempty"`
	TeamMembers []int  `json:"team_members,omitempty"`
}

// Validate enforces the write-side required fields before any network call.
func (p ProjectPayload) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("api: project name is required")
	}
	if p.Status != "" && !ValidProjectStatus(p.Status) {
		return fmt.Errorf("api: unknown project status %q", p.Status)
	}
	return nil
}

// Task mirrors the backend's read serializer.
type Task struct {
	ID              int       `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	Project         *Project  `json:"project,omitempty"`
	CreatedBy       *User     `json:"created_by,omitempty"`
	AssignedTo      *User     `json:"assigned_to,omitempty"`
	AssignedToName  string    `json:"assigned_to_name,omitempty"`
	Status          string    `json:"status"`
	StatusDisplay   string    `json:"status_display,omitempty"`
	Priority        string    `json:"priority,omitempty"`
	PriorityDisplay string    `json:"priority_display,omitempty"`
	StartDate       Date      `json:"start_date,omitempty"`
	EndDate         Date      `json:"end_date,omitempty"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
	UpdatedAt       time.Time `json:"updated_at,omitempty"`
}

// ProjectID returns the owning project's identifier, or zero.
func (t Task) ProjectID() int {
	if t.Project == nil {
		return 0
	}
	return t.Project.ID
}

// TaskPayload is the write shape for creates and updates. The backend takes
// project_id/assigned_to_id as write-only fields.
type TaskPayload struct {
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	ProjectID    int    `json:"project_id"`
	AssignedToID *int   `json:"assigned_to_id,omitempty"`
	Status       string `json:"status,omitempty"`
	Priority     string `json:"priority,omitempty"`
	StartDate    Date   `json:"start_date,omitempty"`
	EndDate      Date   `json:"end_date,omitempty"`
}

// Validate enforces the write-side required fields before any network call.
func (p TaskPayload) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("api: task title is required")
	}
	if p.ProjectID <= 0 {
		return fmt.Errorf("api: task project_id is required")
	}
	if p.Status != "" && !ValidTaskStatus(p.Status) {
		return fmt.Errorf("api: unknown task status %q", p.Status)
	}
	return nil
}

// Health is the backend liveness probe payload.
type Health struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}
