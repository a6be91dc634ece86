package domain

// Board event types pushed to project subscribers.
const (
	EventTaskCreated = "task_created"
	EventTaskUpdated = "task_updated"
	EventTaskMoved   = "task_moved"
	EventTaskDeleted = "task_deleted"
)

// BoardEvent is broadcast to everyone watching a project's board.
type BoardEvent struct {
	Type      string `json:"type"`
	ProjectID string `json:"project_id"`
	TaskID    string `json:"task_id"`
	ActorID   string `json:"actor_id,omitempty"` // user whose request caused it
	Data      any    `json:"data,omitempty"`
}
