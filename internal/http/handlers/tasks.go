package handlers

import (
	"net/http"

	"predman/internal/domain"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateTask(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}
	var nt domain.NewTask
	if !bind(c, &nt) {
		return
	}

	t, err := h.Tasks.Create(c.Request.Context(), userID, nt)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// UpdateTask applies a partial update. With isNextUpdated the task is moved
// in front of next (or to the column tail when next is null).
func (h *Handler) UpdateTask(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}
	var patch domain.TaskPatch
	if !bind(c, &patch) {
		return
	}

	t, err := h.Tasks.Update(c.Request.Context(), userID, c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) DeleteTask(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}
	var ref domain.TaskRef
	if !bind(c, &ref) {
		return
	}

	if err := h.Tasks.Delete(c.Request.Context(), userID, ref); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ProjectBoard returns the three ordered columns of a project.
func (h *Handler) ProjectBoard(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}

	b, err := h.Tasks.Board(c.Request.Context(), userID, c.Param("project_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handler) GetTask(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}

	info, err := h.Tasks.Info(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *Handler) AddDependency(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}
	var d domain.TaskDependency
	if !bind(c, &d) {
		return
	}

	if err := h.Tasks.AddDependency(c.Request.Context(), userID, d); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h *Handler) RemoveDependency(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}
	var d domain.TaskDependency
	if !bind(c, &d) {
		return
	}

	if err := h.Tasks.RemoveDependency(c.Request.Context(), userID, d); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListDependencies(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}

	ids, err := h.Tasks.Dependencies(c.Request.Context(), userID, c.Param("task_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(ids))
}

func (h *Handler) TaskAssignees(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}
	var ref domain.TaskRef
	if !bind(c, &ref) {
		return
	}

	users, err := h.Tasks.Assignees(c.Request.Context(), userID, ref)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(users))
}

func (h *Handler) AssignTask(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}
	var ref domain.TaskRef
	if !bind(c, &ref) {
		return
	}

	if err := h.Tasks.Assign(c.Request.Context(), userID, c.Param("user_id"), ref); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) UnassignTask(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}
	var ref domain.TaskRef
	if !bind(c, &ref) {
		return
	}

	if err := h.Tasks.Unassign(c.Request.Context(), userID, c.Param("user_id"), ref); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type projectRef struct {
	ProjectID string `json:"project_id" binding:"required,uuid"`
}

// AssignedTasks lists the tasks of a project assigned to :user_id.
func (h *Handler) AssignedTasks(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}
	var req projectRef
	if !bind(c, &req) {
		return
	}

	tasks, err := h.Tasks.AssignedTasks(c.Request.Context(), userID, c.Param("user_id"), req.ProjectID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(tasks))
}
