package routes

import (
	"net/http"

	"taskfyer/internal/accounts"
	adminapi "taskfyer/internal/api/admin"
	authapi "taskfyer/internal/api/auth"
	tasksapi "taskfyer/internal/api/tasks"
	usersapi "taskfyer/internal/api/users"
	"taskfyer/internal/app/http/middleware"
	"taskfyer/internal/domain/users"
	"taskfyer/internal/session"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Deps struct {
	DB       *gorm.DB
	Accounts *accounts.Service
	Sessions *session.Manager
	// Google is nil when Google sign-in is not configured.
	Google        *authapi.GoogleSignIn
	SecureCookies bool
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	authH := authapi.NewHandler(d.Accounts, d.Sessions, d.SecureCookies)
	if d.Google != nil {
		authH.WithGoogle(d.Google)
	}
	usersH := usersapi.NewHandler(d.Accounts)
	tasksH := tasksapi.NewHandler(d.DB)
	adminH := adminapi.NewHandler(d.Accounts)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	api.Use(middleware.SanitizeAndCleanInputMiddleware("password"))

	api.POST("/register", authH.Register)
	api.POST("/login", authH.Login)
	api.GET("/logout", authH.Logout)
	api.GET("/login-status", authH.LoginStatus)
	api.GET("/verify-email/:token", authH.VerifyEmail)
	api.POST("/forgot-password", authH.ForgotPassword)
	api.POST("/reset-password/:token", authH.ResetPassword)

	api.GET("/auth/google", authH.GoogleStart)
	api.GET("/auth/google/callback", authH.GoogleCallback)

	// Authenticated
	auth := api.Group("/")
	auth.Use(middleware.AuthMiddleware(d.Sessions))
	auth.GET("/user", usersH.GetCurrentUser)
	auth.PATCH("/user", usersH.UpdateUser)
	auth.POST("/verify-email", authH.RequestVerification)
	auth.POST("/change-password", authH.ChangePassword)

	auth.POST("/task/create", tasksH.CreateTask)
	auth.GET("/tasks", tasksH.GetTasks)
	auth.GET("/task/:id", tasksH.GetTask)
	auth.PATCH("/task/:id", tasksH.UpdateTask)
	auth.DELETE("/task/:id", tasksH.DeleteTask)

	// Admin routes
	admin := api.Group("/admin")
	admin.Use(
		middleware.AuthMiddleware(d.Sessions),
		middleware.RequireRole(users.RoleAdmin),
		middleware.RequireVerified(d.Accounts),
	)
	admin.GET("/users", adminH.ListAllUsers)
	admin.DELETE("/users/:id", adminH.DeleteUser)
}
