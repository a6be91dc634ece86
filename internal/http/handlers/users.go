package handlers

import (
	"net/http"

	"predman/internal/domain"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Register(c *gin.Context) {
	var req domain.RegisterRequest
	if !bind(c, &req) {
		return
	}

	resp, err := h.Users.Register(c.Request.Context(), requestMeta(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if !bind(c, &req) {
		return
	}

	resp, err := h.Users.Login(c.Request.Context(), requestMeta(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Me(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}

	user, err := h.Users.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":    user.ID,
		"login": user.Login,
		"email": user.Email,
	})
}

func (h *Handler) MyInfo(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}

	info, err := h.Users.Info(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *Handler) MyAudit(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}

	logs, err := h.Users.AuditLog(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": nonNil(logs)})
}

func (h *Handler) DeleteMe(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}

	if err := h.Users.Delete(c.Request.Context(), requestMeta(c), userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
