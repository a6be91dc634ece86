package handlers

import (
	"errors"
	"net/http"
	"strings"

	"predman/internal/domain"
	"predman/internal/logger"
	"predman/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Users    UserService
	Projects ProjectService
	Members  MemberService
	Tasks    TaskService
	Stats    StatisticsService
}

func NewHandler(users UserService, projects ProjectService, members MemberService, tasks TaskService, stats StatisticsService) *Handler {
	return &Handler{
		Users:    users,
		Projects: projects,
		Members:  members,
		Tasks:    tasks,
		Stats:    stats,
	}
}

// getUserID извлекает user_id из контекста Gin
func getUserID(c *gin.Context) (string, bool) {
	uid := c.GetString("user_id")
	return uid, uid != ""
}

// mustUser returns the caller id or answers 401.
func mustUser(c *gin.Context) (string, bool) {
	uid, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
	}
	return uid, ok
}

func requestMeta(c *gin.Context) service.RequestMeta {
	return service.RequestMeta{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
}

// bind decodes the JSON body into v, answering 400 on failure.
func bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request: " + err.Error()})
		return false
	}
	return true
}

var statusBySentinel = []struct {
	err    error
	status int
}{
	{domain.ErrNotFound, http.StatusNotFound},
	{domain.ErrForbidden, http.StatusForbidden},
	{domain.ErrUnauthorized, http.StatusUnauthorized},
	{domain.ErrConflict, http.StatusConflict},
	{domain.ErrInvalidInput, http.StatusBadRequest},
}

// respondError maps domain errors onto HTTP statuses. Anything unknown is
// logged and hidden behind a 500.
func respondError(c *gin.Context, err error) {
	for _, m := range statusBySentinel {
		if errors.Is(err, m.err) {
			msg := strings.TrimSuffix(err.Error(), ": "+m.err.Error())
			c.JSON(m.status, gin.H{"error": msg})
			return
		}
	}

	logger.WithContext(c.Request.Context()).Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
