package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bytebolt/bytebolt-api/internal/config"
	"github.com/bytebolt/bytebolt-api/internal/handler"
	"github.com/bytebolt/bytebolt-api/internal/metrics"
	"github.com/bytebolt/bytebolt-api/internal/middleware"
	pgRepo "github.com/bytebolt/bytebolt-api/internal/repository/postgres"
	redisRepo "github.com/bytebolt/bytebolt-api/internal/repository/redis"
	"github.com/bytebolt/bytebolt-api/internal/service"
	"github.com/bytebolt/bytebolt-api/pkg/auth"
	"github.com/bytebolt/bytebolt-api/pkg/database"
	"github.com/bytebolt/bytebolt-api/pkg/logger"
)

func main() {
	// Переменные окружения из .env (если файл есть)
	if err := godotenv.Load(); err != nil {
		log.Printf("Файл .env не найден, используются переменные окружения")
	}

	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	closeLog := logger.Setup(logger.Options{
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	defer closeLog()

	figure.NewFigure("ByteBolt API", "", true).Print()

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database)
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	challengeRepo := pgRepo.NewChallengeRepo(db)
	progressRepo := pgRepo.NewProgressRepo(db)
	submissionRepo := pgRepo.NewSubmissionRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// JWT
	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	// Метрики
	appMetrics := metrics.New()

	// Письма о завершении испытаний (noop без ключа)
	var emailService service.EmailService = &service.NoopEmailService{}
	if cfg.Email.APIKey != "" {
		resendService, errEmail := service.NewResendEmailService(cfg.Email.APIKey, cfg.Email.From)
		if errEmail != nil {
			log.Printf("Email выключен: %v", errEmail)
		} else {
			emailService = resendService
		}
	}

	// Корневой контекст приложения для фоновых горутин
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Инициализируем сервисы
	authService := service.NewAuthService(userRepo, jwtService)
	userService := service.NewUserService(userRepo)
	challengeService := service.NewChallengeService(challengeRepo, cacheRepo)
	progressService := service.NewProgressService(challengeRepo, progressRepo, submissionRepo, userRepo, emailService, appMetrics)
	aiService := service.NewAIService(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model,
		time.Duration(cfg.AI.TimeoutSec)*time.Second, appMetrics)
	newsService := service.NewNewsService(cfg.News.URL,
		time.Duration(cfg.News.TimeoutSec)*time.Second,
		time.Duration(cfg.News.CacheTTLSec)*time.Second,
		cacheRepo, appMetrics)
	newsService.StartBackgroundRefresh(ctx, time.Duration(cfg.News.RefreshIntervalSec)*time.Second)

	// Инициализируем обработчики
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	challengeHandler := handler.NewChallengeHandler(challengeService, progressService)
	newsHandler := handler.NewNewsHandler(newsService)
	chatHandler := handler.NewChatHandler(aiService)

	// Инициализируем middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService)

	// Инициализируем роутер Gin
	router := gin.Default()

	isProduction := gin.Mode() == gin.ReleaseMode
	if isProduction {
		// Production: не доверять прокси-заголовкам
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://bytebolt.vercel.app", "http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Метрики Prometheus
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Настраиваем маршруты API
	api := router.Group("/api")
	{
		// Аутентификация
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		// Пользователи
		users := api.Group("/users")
		users.Use(authMiddleware.RequireAuth())
		{
			users.GET("/me", userHandler.GetMe)
			users.PUT("/me", userHandler.UpdateMe)
		}

		// Лидерборд (публичный маршрут)
		api.GET("/leaderboard", userHandler.GetLeaderboard)

		// Новости (публичный маршрут)
		api.GET("/news", newsHandler.ListNews)

		// Технический ассистент
		api.POST("/chat", authMiddleware.RequireAuth(), chatHandler.Chat)

		// Испытания
		challenges := api.Group("/challenges")
		{
			challenges.GET("", challengeHandler.ListChallenges)

			// Группа маршрутов, требующих challengeID
			challengeWithID := challenges.Group("/:id")
			challengeWithID.Use(middleware.ExtractChallengeID("id", "challengeID"))
			{
				challengeWithID.GET("", challengeHandler.GetChallenge)

				// Маршруты для аутентифицированных пользователей
				authedChallenges := challengeWithID.Group("")
				authedChallenges.Use(authMiddleware.RequireAuth())
				{
					authedChallenges.GET("/with-questions", challengeHandler.GetChallengeWithQuestions)
					authedChallenges.POST("/start", challengeHandler.StartChallenge)
					authedChallenges.POST("/submit", challengeHandler.SubmitQuiz)
					authedChallenges.POST("/assignment", challengeHandler.SubmitAssignment)
					authedChallenges.POST("/retake", challengeHandler.RetakeChallenge)
					authedChallenges.GET("/progress", challengeHandler.GetProgress)
				}
			}

			// Маршруты изменения каталога (администраторы)
			adminCatalog := challenges.Group("")
			adminCatalog.Use(authMiddleware.RequireAuth(), authMiddleware.AdminOnly())
			{
				adminCatalog.POST("", challengeHandler.CreateChallenge)
				adminCatalog.POST("/:id/questions",
					middleware.ExtractChallengeID("id", "challengeID"),
					challengeHandler.AddQuestions)
			}
		}

		// Прогресс текущего пользователя по всем испытаниям
		api.GET("/progress", authMiddleware.RequireAuth(), challengeHandler.ListMyProgress)

		// Административный экспорт прогресса
		admin := api.Group("/admin")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.AdminOnly())
		{
			admin.GET("/progress/export", challengeHandler.ExportProgress)
		}
	}

	// WebSocket чат с ассистентом (токен в query-параметре)
	router.GET("/ws/chat", authMiddleware.RequireAuth(), chatHandler.ChatWS)

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Server started on port %s", cfg.Server.Port)

	// Ожидаем сигнал остановки
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Отправляем сигнал завершения для всех горутин
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}

	log.Println("Server exited properly")
}
