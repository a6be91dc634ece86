package domain

import (
	"encoding/json"
	"time"
)

// TaskStatus - column a task lives in
type TaskStatus string

const (
	StatusPlanned    TaskStatus = "PLANNED"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusCompleted  TaskStatus = "COMPLETED"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPlanned, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Task is a single board card. Next is the id of the task that follows it in
// the same status column; nil marks the tail.
type Task struct {
	ID          string     `db:"id" json:"id"`
	ProjectID   string     `db:"project_id" json:"project_id"`
	Name        string     `db:"name" json:"name"`
	Description string     `db:"description" json:"description"`
	StoryPoints float64    `db:"story_points" json:"story_points"`
	Status      TaskStatus `db:"status" json:"status"`
	Next        *string    `db:"next_id" json:"-"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// TaskInfo - task with its successor and dependencies (GET /tasks/:id)
type TaskInfo struct {
	Task
	Next         *string  `json:"next"`
	Dependencies []string `json:"dependencies"`
}

// NewTask - payload for task creation
type NewTask struct {
	ProjectID   string  `json:"project_id" binding:"required,uuid"`
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	StoryPoints float64 `json:"story_points" binding:"gte=0"`
}

// TaskRef identifies a task inside a project (delete, assignments).
type TaskRef struct {
	ProjectID string `json:"project_id" binding:"required,uuid"`
	TaskID    string `json:"task_id" binding:"required,uuid"`
}

// TaskPatch is a partial task update. Next is only meaningful when
// NextUpdated is set: a nil Next then means "move to the end of the column".
type TaskPatch struct {
	Name        *string     `json:"name,omitempty"`
	Description *string     `json:"description,omitempty"`
	StoryPoints *float64    `json:"story_points,omitempty"`
	Status      *TaskStatus `json:"status,omitempty"`
	Next        *string     `json:"next,omitempty"`
	NextUpdated bool        `json:"isNextUpdated"`
}

// MarshalJSON writes next as an explicit null when the successor is being
// cleared, and leaves it out entirely when it is not touched.
func (p TaskPatch) MarshalJSON() ([]byte, error) {
	body := map[string]any{"isNextUpdated": p.NextUpdated}
	if p.Name != nil {
		body["name"] = *p.Name
	}
	if p.Description != nil {
		body["description"] = *p.Description
	}
	if p.StoryPoints != nil {
		body["story_points"] = *p.StoryPoints
	}
	if p.Status != nil {
		body["status"] = *p.Status
	}
	if p.NextUpdated {
		if p.Next == nil {
			body["next"] = nil
		} else {
			body["next"] = *p.Next
		}
	}
	return json.Marshal(body)
}

// Validate checks field-level constraints of the patch.
func (p TaskPatch) Validate() error {
	if p.Name != nil && *p.Name == "" {
		return Invalid("task name cannot be empty")
	}
	if p.StoryPoints != nil && *p.StoryPoints < 0 {
		return Invalid("story points cannot be negative")
	}
	if p.Status != nil && !p.Status.Valid() {
		return Invalid("unknown task status")
	}
	return nil
}

// Apply copies the set fields of the patch onto t. Ordering is not touched.
func (p TaskPatch) Apply(t *Task) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.StoryPoints != nil {
		t.StoryPoints = *p.StoryPoints
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
}

// TaskDependency - task_id cannot start before dependency_id is done
type TaskDependency struct {
	TaskID       string `json:"task_id" binding:"required,uuid"`
	DependencyID string `json:"dependency_id" binding:"required,uuid"`
}

// TaskAssignment links a member to a task.
type TaskAssignment struct {
	TaskID string `json:"task_id"`
	UserID string `json:"user_id"`
}
