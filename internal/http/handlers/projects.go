package handlers

import (
	"net/http"

	"predman/internal/domain"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateProject(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}
	var np domain.NewProject
	if !bind(c, &np) {
		return
	}

	info, err := h.Projects.Create(c.Request.Context(), requestMeta(c), userID, np)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, info)
}

// JoinedProjects - projects the caller is a member of
func (h *Handler) JoinedProjects(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}

	projects, err := h.Projects.ListJoined(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(projects))
}

func (h *Handler) OwnedProjects(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}

	projects, err := h.Projects.ListOwned(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(projects))
}

func (h *Handler) GetProject(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}

	p, err := h.Projects.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) ProjectInfo(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}

	info, err := h.Projects.Info(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *Handler) UpdateProject(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}
	var patch domain.ProjectPatch
	if !bind(c, &patch) {
		return
	}

	info, err := h.Projects.Update(c.Request.Context(), userID, c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *Handler) DeleteProject(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}

	if err := h.Projects.Delete(c.Request.Context(), requestMeta(c), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ProjectStatistics refreshes today's snapshot and returns the whole history.
func (h *Handler) ProjectStatistics(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}

	history, err := h.Stats.History(c.Request.Context(), userID, c.Param("project_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(history))
}

func (h *Handler) ProjectAudit(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}

	logs, err := h.Projects.AuditLog(c.Request.Context(), userID, c.Param("project_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": nonNil(logs)})
}

// nonNil keeps empty lists from being encoded as null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
