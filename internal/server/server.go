package server

import (
	"context"
	"net/http"
	"time"

	"teamcollab/internal/auth"
	"teamcollab/internal/domain/errors"
	"teamcollab/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator"
	"github.com/rs/zerolog/log"
)

type API struct {
	httpSrv  *http.Server
	users    *service.UserService
	projects *service.ProjectService
	tasks    *service.TaskService
	tokens   *auth.TokenManager
	validate *validator.Validate
	origins  []string
	pinger   pinger
}

// pinger is implemented by stores backed by an external database.
type pinger interface {
	Ping(ctx context.Context) error
}

// NewAPI wires the services over store and registers every route.
func NewAPI(store service.Store, cfg *Config) *API {
	if store == nil {
		return nil
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	api := &API{
		httpSrv: &http.Server{
			Addr:              cfg.ListenAddr(),
			ReadHeaderTimeout: 10 * time.Second,
		},
		users:    service.NewUserService(store),
		projects: service.NewProjectService(store, store),
		tasks:    service.NewTaskService(store),
		tokens:   auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL),
		validate: validator.New(),
		origins:  cfg.AllowedOrigins,
	}
	if p, ok := store.(pinger); ok {
		api.pinger = p
	}
	api.configRoutes()
	return api
}

// Handler exposes the router, mainly for httptest.
func (api *API) Handler() http.Handler {
	return api.httpSrv.Handler
}

func (api *API) Start() error {
	if api.httpSrv == nil {
		return errors.ErrInternalServer
	}
	if err := api.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (api *API) Shutdown(ctx context.Context) error {
	return api.httpSrv.Shutdown(ctx)
}

func (api *API) configRoutes() {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(RequestLogger(), gin.Recovery(), api.corsMiddleware(), GzipRequestDecompress(), GzipResponseCompress())

	router.NoMethod(func(ctx *gin.Context) {
		ctx.JSON(http.StatusMethodNotAllowed, errorBody("method not allowed"))
	})
	router.GET("/healthz", api.healthz)

	authed := api.RequireUser()
	root := router.Group("/api")

	authGroup := root.Group("/auth")
	{
		authGroup.POST("/login", api.login)
		authGroup.POST("/register", api.register)
		authGroup.GET("/me", authed, api.me)
	}

	users := root.Group("/users")
	{
		users.GET("", api.getUsers)
		users.GET("/me", authed, api.me)
		users.GET("/check-username", api.checkUsername)
		users.GET("/check-email", api.checkEmail)
		users.GET("/:id", api.getUser)
		users.PUT("/:id", api.updateUser)
		users.DELETE("/:id", api.deleteUser)
	}

	projects := root.Group("/projects")
	{
		projects.GET("", api.getProjects)
		projects.GET("/my", authed, api.getMyProjects)
		projects.GET("/search", api.searchProjects)
		projects.POST("", authed, api.createProject)
		projects.GET("/:id", api.getProject)
		projects.PUT("/:id", api.updateProject)
		projects.DELETE("/:id", api.deleteProject)
		projects.POST("/:id/members/:userId", api.addProjectMember)
		projects.DELETE("/:id/members/:userId", api.removeProjectMember)
	}

	tasks := root.Group("/tasks")
	{
		tasks.GET("", api.getTasks)
		tasks.GET("/my", authed, api.getMyTasks)
		tasks.GET("/due", api.getTasksDue)
		tasks.GET("/project/:projectId", api.getProjectTasks)
		tasks.GET("/project/:projectId/status/:status", api.getProjectTasksByStatus)
		tasks.GET("/project/:projectId/priority/:priority", api.getProjectTasksByPriority)
		tasks.POST("", authed, api.createTask)
		tasks.GET("/:id", api.getTask)
		tasks.PUT("/:id", api.updateTask)
		tasks.DELETE("/:id", api.deleteTask)
		tasks.PUT("/:id/status", api.updateTaskStatus)
		tasks.POST("/:id/assignees/:userId", api.addTaskAssignee)
		tasks.DELETE("/:id/assignees/:userId", api.removeTaskAssignee)
		tasks.GET("/:id/comments", api.getComments)
		tasks.POST("/:id/comments", authed, api.createComment)
		tasks.GET("/:id/attachments", api.getAttachments)
		tasks.POST("/:id/attachments", authed, api.createAttachment)
	}

	root.DELETE("/comments/:id", authed, api.deleteComment)
	root.DELETE("/attachments/:id", authed, api.deleteAttachment)

	api.httpSrv.Handler = router
}

func (api *API) corsMiddleware() gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Content-Encoding", "Accept", "Accept-Encoding", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(api.origins) == 0 || (len(api.origins) == 1 && api.origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = api.origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

const healthTimeout = 2 * time.Second

// healthz reports 503 when the database behind the store does not answer.
func (api *API) healthz(ctx *gin.Context) {
	if api.pinger != nil {
		pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), healthTimeout)
		defer cancel()
		if err := api.pinger.Ping(pingCtx); err != nil {
			log.Warn().Err(err).Msg("health check failed")
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}
