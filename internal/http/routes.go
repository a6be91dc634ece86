package http

import (
	"time"

	"predman/internal/config"
	"predman/internal/http/handlers"
	"predman/internal/http/middleware"
	"predman/internal/repository"
	"predman/internal/service"
	"predman/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"
)

// Services is the wired application graph shared by the router and the
// background jobs.
type Services struct {
	Users    *service.UserService
	Projects *service.ProjectService
	Members  *service.MemberService
	Tasks    *service.TaskService
	Stats    *service.StatisticsService
	Hub      *ws.Hub

	memberRepo *repository.MemberRepository
}

// NewServices builds repositories and services on top of db. rdb may be nil,
// in which case boards are not cached.
func NewServices(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config) *Services {
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	depRepo := repository.NewDependencyRepository(db)
	assignRepo := repository.NewAssignmentRepository(db)
	statsRepo := repository.NewStatisticsRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	cache := repository.NewBoardCache(rdb, cfg.BoardCacheTTL)

	hub := ws.NewHub()
	audit := service.NewAuditService(auditRepo)
	stats := service.NewStatisticsService(projectRepo, memberRepo, taskRepo, depRepo, statsRepo, service.NewPredictor(cfg.PredictionURL))

	return &Services{
		Users:      service.NewUserService(userRepo, projectRepo, audit, cache),
		Projects:   service.NewProjectService(projectRepo, memberRepo, stats, audit, cache),
		Members:    service.NewMemberService(projectRepo, memberRepo, userRepo, stats, audit, cache),
		Tasks:      service.NewTaskService(taskRepo, depRepo, assignRepo, memberRepo, cache, hub),
		Stats:      stats,
		Hub:        hub,
		memberRepo: memberRepo,
	}
}

func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, rdb *redis.Client, svc *Services, cfg *config.Config, version string) {
	h := handlers.NewHandler(svc.Users, svc.Projects, svc.Members, svc.Tasks, svc.Stats)
	healthHandler := handlers.NewHealthHandler(db, rdb, version)

	middleware.UseRedis(rdb)
	r.Use(middleware.RequestID(), middleware.Metrics())

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	apiRL := middleware.RedisRateLimit("api", cfg.APIRateLimit, time.Duration(cfg.APIRateWindow)*time.Second)
	authRL := middleware.RedisRateLimit("auth", cfg.AuthRateLimit, time.Duration(cfg.AuthRateWindow)*time.Second)

	v1 := r.Group("/v1")

	// Board stream authenticates by query token itself
	v1.GET("/ws", ws.HandleWS(svc.Hub, svc.memberRepo, cfg.AllowedOrigin))

	registerAPIRoutes(v1, h, apiRL, authRL)
}

func registerAPIRoutes(v1 *gin.RouterGroup, h *handlers.Handler, apiRL, authRL gin.HandlerFunc) {
	auth := middleware.JWT()

	users := v1.Group("/users")
	{
		users.POST("/register", authRL, h.Register)
		users.POST("/login", authRL, h.Login)
		users.GET("", auth, apiRL, h.Me)
		users.GET("/info", auth, apiRL, h.MyInfo)
		users.GET("/audit", auth, apiRL, h.MyAudit)
		users.DELETE("", auth, apiRL, h.DeleteMe)
	}

	projects := v1.Group("/projects", auth, apiRL)
	{
		projects.POST("", h.CreateProject)
		projects.GET("/user", h.JoinedProjects)
		projects.GET("/owner", h.OwnedProjects)
		projects.GET("/:id", h.GetProject)
		projects.GET("/info/:id", h.ProjectInfo)
		projects.PATCH("/:id", h.UpdateProject)
		projects.DELETE("/:id", h.DeleteProject)

		projects.POST("/members", h.AddMember)
		projects.DELETE("/members", h.RemoveMember)
		projects.GET("/members/:project_id", h.ListMembers)
		projects.PATCH("/owner", h.ChangeOwner)

		projects.GET("/statistics/:project_id", h.ProjectStatistics)
		projects.GET("/audit/:project_id", h.ProjectAudit)
	}

	tasks := v1.Group("/tasks", auth, apiRL)
	{
		tasks.POST("", h.CreateTask)
		tasks.PATCH("/:id", h.UpdateTask)
		tasks.DELETE("", h.DeleteTask)
		tasks.GET("/project/:project_id", h.ProjectBoard)
		tasks.GET("/:id", h.GetTask)

		tasks.POST("/dependency", h.AddDependency)
		tasks.DELETE("/dependency", h.RemoveDependency)
		tasks.GET("/dependency/:task_id", h.ListDependencies)

		tasks.POST("/assignments/task", h.TaskAssignees)
		tasks.POST("/assignments/new/:user_id", h.AssignTask)
		tasks.DELETE("/assignments/:user_id", h.UnassignTask)
		tasks.POST("/assignments/:user_id", h.AssignedTasks)
	}
}
