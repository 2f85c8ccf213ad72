package main

import (
	"log/slog"
	"os"
	"time"

	"photos-picker-backend/config"
	"photos-picker-backend/controllers"
	"photos-picker-backend/forms"
	"photos-picker-backend/google"
	"photos-picker-backend/kv"
	"photos-picker-backend/service"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/requestid"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// SecurityHeadersMiddleware sets the common response headers the UI pages
// and API responses are served with.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("X-Content-Type-Options", "nosniff")
		c.Writer.Header().Set("X-Frame-Options", "DENY")
		c.Writer.Header().Set("Referrer-Policy", "no-referrer-when-downgrade")
		c.Next()
	}
}

func SlogMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rlog := logger.With(
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"client_ip", c.ClientIP(),
			"request_id", requestid.Get(c),
		)

		start := time.Now()
		rlog.Debug("request started")
		c.Next()
		duration := time.Since(start)
		rlog.Info("request completed", "status", c.Writer.Status(), "duration", duration)
	}
}

func main() {
	//Load the .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			slog.Error("failed to load the env file")
			os.Exit(1)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	var logger *slog.Logger
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
		logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	slog.SetDefault(logger)

	//Start the default gin server
	r := gin.Default()

	//Custom form validator
	binding.Validator = new(forms.DefaultValidator)

	r.Use(SecurityHeadersMiddleware())
	r.Use(requestid.New(requestid.WithCustomHeaderStrKey("X-Request-Id")))
	r.Use(SlogMiddleware(logger))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	redisKV, err := kv.NewRedisKV(cfg.Redis.Host, cfg.Redis.Pass, cfg.Redis.DB)
	if err != nil {
		slog.Error("failed to connect to key-value store", "error", err)
		os.Exit(1)
	}

	clock := clockwork.NewRealClock()
	oauth := google.NewOAuth(cfg.Google, clock)
	pickerClient := google.NewPicker(cfg.Google, clock)
	library := google.NewLibrary(cfg.Google)

	authService := service.NewAuthService(redisKV, oauth, clock)
	pickerService := service.NewPickerService(redisKV, pickerClient, clock)

	health := controllers.NewHealthController()
	r.GET("/health", health.Health)

	auth := controllers.NewAuthController(authService, oauth, cfg)
	r.GET("/auth/google", auth.Start)
	r.GET("/auth/callback", auth.Callback)
	r.GET("/auth/clear", auth.Clear)
	r.GET("/auth/revoke", auth.Revoke)

	photos := controllers.NewPhotosController(authService, library, cfg)
	r.GET("/", photos.Root)
	r.GET("/photos", photos.Page)
	r.GET("/api/test-photos", photos.TestPhotos)

	picker := controllers.NewPickerController(authService, pickerService, cfg)
	r.POST("/api/picker/session", picker.CreateSession)
	r.GET("/api/picker/session/:id/status", picker.SessionStatus)
	r.GET("/api/picker/session/:id/media", picker.SessionMedia)
	r.GET("/api/picker/session/:id/wait", picker.SessionWait)
	r.DELETE("/api/picker/session/:id", picker.DeleteSession)
	r.GET("/api/picker/callback", picker.Callback)

	slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)

	if err := r.Run(":" + cfg.Port); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
