package main

import (
	"context"
	"os"
	"strings"
	"time"

	"taskfyer/config"
	"taskfyer/database"
	"taskfyer/internal/accounts"
	authapi "taskfyer/internal/api/auth"
	routes "taskfyer/internal/app/http"
	"taskfyer/internal/logging"
	"taskfyer/internal/mail"
	"taskfyer/internal/session"
	"taskfyer/internal/tokens"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// gin.SetMode(gin.ReleaseMode) uncomment only in production
	config.LoadEnv()
	log := logging.New(os.Stdout, config.LOG_FORMAT)
	db := database.InitDB(config.DB_URL)

	var mailer mail.Mailer
	if config.SMTP_HOST != "" {
		mailer = mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     config.SMTP_HOST,
			Port:     config.SMTP_PORT,
			From:     config.SMTP_FROM,
			Password: config.SMTP_PASSWORD,
		})
	} else {
		mailer = mail.NewLogMailer(log)
	}

	accountsSvc := accounts.NewService(
		accounts.NewGormUserRepository(db),
		tokens.NewService(tokens.NewGormStore(db)),
		mailer,
		accounts.BcryptHasher{Cost: config.BCRYPT_COST},
		log,
		accounts.Config{BaseURL: config.CLIENT_URL},
	)

	deps := routes.Deps{
		DB:            db,
		Accounts:      accountsSvc,
		Sessions:      session.NewManager(config.JWT_SECRET, session.DefaultTTL),
		SecureCookies: strings.HasPrefix(config.CLIENT_URL, "https://"),
	}
	if config.GoogleEnabled() {
		deps.Google = authapi.NewGoogleSignIn(authapi.GoogleConfig{
			ClientID:         config.GOOGLE_CLIENT_ID,
			ClientSecret:     config.GOOGLE_CLIENT_SECRET,
			RedirectURL:      config.GOOGLE_REDIRECT_URL,
			FrontendRedirect: config.GOOGLE_FRONTEND_REDIRECT,
		})
	}

	r := gin.Default()

	// CORS before routes; the web client sends the session cookie.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.CORS_ORIGIN},
		AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, deps)

	log.Info(context.Background(), "listening", "port", config.PORT)
	if err := r.Run(":" + config.PORT); err != nil {
		log.Error(context.Background(), "server stopped", "err", err)
		os.Exit(1)
	}
}
