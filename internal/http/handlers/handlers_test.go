package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"predman/internal/domain"
	"predman/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Each fake embeds the interface so only the methods a test needs are written.

type fakeTasks struct {
	TaskService
	patch    domain.TaskPatch
	taskID   string
	err      error
	assignee string
}

func (f *fakeTasks) Update(ctx context.Context, userID, taskID string, patch domain.TaskPatch) (*domain.Task, error) {
	f.taskID, f.patch = taskID, patch
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Task{ID: taskID, ProjectID: "p1", Status: domain.StatusInProgress}, nil
}

func (f *fakeTasks) Board(ctx context.Context, userID, projectID string) (domain.Board, error) {
	if f.err != nil {
		return domain.Board{}, f.err
	}
	b := domain.NewBoard()
	b.Planned = []domain.Task{{ID: "t1", Name: "first", Status: domain.StatusPlanned}}
	return b, nil
}

func (f *fakeTasks) Assign(ctx context.Context, userID, assigneeID string, ref domain.TaskRef) error {
	f.assignee = assigneeID
	return f.err
}

type fakeUsers struct {
	UserService
	err error
}

func (f *fakeUsers) Register(ctx context.Context, meta service.RequestMeta, req domain.RegisterRequest) (*domain.AuthResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.AuthResponse{ID: "u1", Login: req.Login, Email: req.Email, Token: "tok"}, nil
}

func (f *fakeUsers) AuditLog(ctx context.Context, id string) ([]*domain.AuditLog, error) {
	if f.err != nil {
		return nil, f.err
	}
	if id != "u1" {
		return nil, nil
	}
	return []*domain.AuditLog{{ID: 7, UserID: id, Action: domain.AuditActionLogin, Category: domain.AuditCategoryAuth}}, nil
}

type fakeProjects struct {
	ProjectService
}

func (fakeProjects) ListJoined(ctx context.Context, userID string) ([]domain.Project, error) {
	return nil, nil
}

func (fakeProjects) AuditLog(ctx context.Context, userID, projectID string) ([]*domain.AuditLog, error) {
	if userID != "owner" {
		return nil, domain.Forbidden("only the project owner can do this")
	}
	return nil, nil
}

type fakeMembers struct {
	MemberService
	added domain.MemberByEmail
}

func (f *fakeMembers) Add(ctx context.Context, meta service.RequestMeta, userID string, req domain.MemberByEmail) (*domain.User, error) {
	f.added = req
	return &domain.User{ID: "u2", Login: "bob", Email: req.UserEmail}, nil
}

func router(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	auth := func(c *gin.Context) { c.Set("user_id", "u1") }

	r.POST("/v1/users/register", h.Register)
	r.GET("/v1/projects/user", auth, h.JoinedProjects)
	r.PATCH("/v1/tasks/:id", auth, h.UpdateTask)
	r.GET("/v1/tasks/project/:project_id", auth, h.ProjectBoard)
	r.POST("/v1/tasks/assignments/new/:user_id", auth, h.AssignTask)
	r.GET("/v1/anon/tasks/project/:project_id", h.ProjectBoard)
	r.POST("/v1/projects/members", auth, h.AddMember)
	r.GET("/v1/projects/audit/:project_id", auth, h.ProjectAudit)
	r.GET("/v1/users/audit", auth, h.MyAudit)
	r.GET("/v1/anon/users/audit", h.MyAudit)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func TestUpdateTaskDecodesMove(t *testing.T) {
	tasks := &fakeTasks{}
	r := router(&Handler{Tasks: tasks})

	w := do(r, http.MethodPatch, "/v1/tasks/t1", `{"status":"IN_PROGRESS","next":null,"isNextUpdated":true}`)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "t1", tasks.taskID)
	assert.True(t, tasks.patch.NextUpdated)
	assert.Nil(t, tasks.patch.Next)
	require.NotNil(t, tasks.patch.Status)
	assert.Equal(t, domain.StatusInProgress, *tasks.patch.Status)
}

func TestErrorsMapToStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{domain.NotFound("task not found"), http.StatusNotFound, "task not found"},
		{domain.Forbidden("not a project member"), http.StatusForbidden, "not a project member"},
		{domain.Conflict("next task is in another column"), http.StatusConflict, "next task is in another column"},
		{domain.Invalid("unknown task status"), http.StatusBadRequest, "unknown task status"},
		{domain.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{errors.New("connection reset"), http.StatusInternalServerError, "internal error"},
	}
	for _, tc := range cases {
		t.Run(tc.msg, func(t *testing.T) {
			r := router(&Handler{Tasks: &fakeTasks{err: tc.err}})
			w := do(r, http.MethodPatch, "/v1/tasks/t1", `{"name":"x"}`)
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.msg, errorBody(t, w))
		})
	}
}

func TestBrokenOrderIsInternal(t *testing.T) {
	r := router(&Handler{Tasks: &fakeTasks{err: domain.ErrBrokenOrder}})

	w := do(r, http.MethodGet, "/v1/tasks/project/p1", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestBoardIsServedInColumnOrder(t *testing.T) {
	r := router(&Handler{Tasks: &fakeTasks{}})

	w := do(r, http.MethodGet, "/v1/tasks/project/p1", "")
	require.Equal(t, http.StatusOK, w.Code)

	var b domain.Board
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	require.Len(t, b.Planned, 1)
	assert.Equal(t, "t1", b.Planned[0].ID)
	assert.Empty(t, b.Completed)
	assert.Contains(t, w.Body.String(), `"inprogress":[]`)
}

func TestMissingUserIsUnauthorized(t *testing.T) {
	r := router(&Handler{Tasks: &fakeTasks{}})

	w := do(r, http.MethodGet, "/v1/anon/tasks/project/p1", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterValidatesBody(t *testing.T) {
	r := router(&Handler{Users: &fakeUsers{}})

	w := do(r, http.MethodPost, "/v1/users/register", `{"email":"not-an-email","login":"x","password":"secret1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/v1/users/register", `{"email":"a@b.io","login":"x","password":"123"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/v1/users/register", `{"email":"a@b.io","login":"ann","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var resp domain.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ann", resp.Login)
	assert.Equal(t, "tok", resp.Token)
}

func TestRegisterConflict(t *testing.T) {
	r := router(&Handler{Users: &fakeUsers{err: domain.Conflict("email is already registered")}})

	w := do(r, http.MethodPost, "/v1/users/register", `{"email":"a@b.io","login":"ann","password":"secret1"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "email is already registered", errorBody(t, w))
}

func TestEmptyListsAreArrays(t *testing.T) {
	r := router(&Handler{Projects: fakeProjects{}})

	w := do(r, http.MethodGet, "/v1/projects/user", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestAssignTakesUserFromPath(t *testing.T) {
	tasks := &fakeTasks{}
	r := router(&Handler{Tasks: tasks})

	body := `{"project_id":"6f1c2a9e-4b1d-4c7e-9a55-2f0f8d1e3b21","task_id":"0b6a8e1c-7d2f-4a3b-8c9d-1e2f3a4b5c6d"}`
	w := do(r, http.MethodPost, "/v1/tasks/assignments/new/u2", body)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "u2", tasks.assignee)

	w = do(r, http.MethodPost, "/v1/tasks/assignments/new/u2", `{"project_id":"nope","task_id":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddMemberBindsEmail(t *testing.T) {
	members := &fakeMembers{}
	r := router(&Handler{Members: members})

	w := do(r, http.MethodPost, "/v1/projects/members", `{"project_id":"6f1c2a9e-4b1d-4c7e-9a55-2f0f8d1e3b21","user_email":"bob@example.com"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "bob@example.com", members.added.UserEmail)

	w = do(r, http.MethodPost, "/v1/projects/members", `{"project_id":"6f1c2a9e-4b1d-4c7e-9a55-2f0f8d1e3b21","user_email":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuditIsOwnerOnly(t *testing.T) {
	r := router(&Handler{Projects: fakeProjects{}})

	// the fake router authenticates everyone as u1
	w := do(r, http.MethodGet, "/v1/projects/audit/p1", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "only the project owner can do this", errorBody(t, w))
}

func TestMyAuditListsCallerEntries(t *testing.T) {
	r := router(&Handler{Users: &fakeUsers{}})

	w := do(r, http.MethodGet, "/v1/users/audit", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Logs []domain.AuditLog `json:"logs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Logs, 1)
	assert.Equal(t, "u1", body.Logs[0].UserID)
	assert.Equal(t, domain.AuditActionLogin, body.Logs[0].Action)

	w = do(r, http.MethodGet, "/v1/anon/users/audit", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
