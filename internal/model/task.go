package model

import (
	"strings"
	"time"
)

// Priority is the importance of a task as the server spells it.
type Priority string

const (
	PriorityHigh   Priority = "ALTA"
	PriorityMedium Priority = "MEDIA"
	PriorityLow    Priority = "BAJA"

	// PriorityAll is only meaningful as a filter value.
	PriorityAll Priority = "TODAS"
)

// Priorities lists the assignable priorities from highest to lowest.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Rank orders priorities for sorting (lower number = higher priority).
// Unknown values sort after PriorityLow.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// Label returns the English display name of the priority.
func (p Priority) Label() string {
	switch p {
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	case PriorityLow:
		return "Low"
	case PriorityAll:
		return "All"
	default:
		return string(p)
	}
}

// ParsePriority accepts either the wire value (ALTA) or the English name
// (high), case-insensitively.
func ParsePriority(s string) (Priority, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ALTA", "HIGH":
		return PriorityHigh, true
	case "MEDIA", "MEDIUM":
		return PriorityMedium, true
	case "BAJA", "LOW":
		return PriorityLow, true
	case "TODAS", "ALL", "":
		return PriorityAll, true
	}
	return "", false
}

// Status is the lifecycle state of a task.
type Status string

const (
	StatusActive   Status = "ACTIVA"
	StatusFinished Status = "FINALIZADA"
)

// DefaultGroup is the label shown for tasks whose group is empty.
// The server stores those tasks with an empty group.
const DefaultGroup = "General"

// DateLayout is the calendar date format the server uses for fecha_creacion.
const DateLayout = "2006-01-02"

// Task is a single entry of a user's task list.
type Task struct {
	// ID is assigned by the server and never changes.
	ID int `json:"id"`

	Title       string   `json:"titulo"`
	Priority    Priority `json:"prioridad"`
	Description string   `json:"descripcion"`

	// CreationDate is the server-assigned creation date (YYYY-MM-DD).
	CreationDate string `json:"fecha_creacion"`

	Status Status `json:"estado"`

	// Group is empty for tasks in the default group.
	Group string `json:"grupo"`

	// Favorite is client-only; it is derived from the local favorite set
	// each time the list is loaded and never sent to the server.
	Favorite bool `json:"-"`
}

// CreatedAt parses CreationDate. Full timestamps are accepted too.
// It returns the zero time when the value cannot be parsed.
func (t Task) CreatedAt() time.Time {
	s := strings.TrimSpace(t.CreationDate)
	if s == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts
	}
	if len(s) >= len(DateLayout) {
		if d, err := time.ParseInLocation(DateLayout, s[:len(DateLayout)], time.Local); err == nil {
			return d
		}
	}
	return time.Time{}
}

// IsFinished reports whether the task has been marked as finished.
func (t Task) IsFinished() bool { return t.Status == StatusFinished }

// GroupLabel returns the group for display, mapping "" to DefaultGroup.
func (t Task) GroupLabel() string {
	return DisplayGroup(t.Group)
}

// DisplayGroup maps the stored group value to the label shown to users.
func DisplayGroup(group string) string {
	if strings.TrimSpace(group) == "" {
		return DefaultGroup
	}
	return group
}

// StoredGroup maps a displayed group label back to its stored value.
func StoredGroup(label string) string {
	if label == DefaultGroup {
		return ""
	}
	return label
}

// NewTask is the body of POST /tarea.
type NewTask struct {
	Title        string   `json:"titulo"`
	Priority     Priority `json:"prioridad"`
	Description  string   `json:"descripcion"`
	Group        string   `json:"grupo"`
	UserID       int      `json:"usuario_id"`
	CreationDate string   `json:"fecha_creacion"`
	Status       Status   `json:"estado"`
}

// TaskPatch is the body of PUT /tarea/{id}. Nil fields are left out of the
// request so the server only touches what changed.
type TaskPatch struct {
	ID          int       `json:"id"`
	Title       *string   `json:"titulo,omitempty"`
	Priority    *Priority `json:"prioridad,omitempty"`
	Description *string   `json:"descripcion,omitempty"`
	Group       *string   `json:"grupo,omitempty"`
	Status      *Status   `json:"estado,omitempty"`
}

// FinishPatch builds the patch that marks a task as finished.
func FinishPatch(id int) TaskPatch {
	st := StatusFinished
	return TaskPatch{ID: id, Status: &st}
}
