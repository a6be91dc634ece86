package handlers

import (
	"net/http"

	"predman/internal/domain"

	"github.com/gin-gonic/gin"
)

func (h *Handler) AddMember(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}
	var req domain.MemberByEmail
	if !bind(c, &req) {
		return
	}

	u, err := h.Members.Add(c.Request.Context(), requestMeta(c), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h *Handler) RemoveMember(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}
	var req domain.MemberRef
	if !bind(c, &req) {
		return
	}

	if err := h.Members.Remove(c.Request.Context(), requestMeta(c), userID, req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListMembers(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}

	users, err := h.Members.List(c.Request.Context(), userID, c.Param("project_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(users))
}

func (h *Handler) ChangeOwner(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}
	var req domain.MemberByEmail
	if !bind(c, &req) {
		return
	}

	p, err := h.Members.ChangeOwner(c.Request.Context(), requestMeta(c), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
