package main

import (
	"bookshare-backend/config"
	"bookshare-backend/internal/api/book"
	"bookshare-backend/internal/api/chat"
	"bookshare-backend/internal/api/exchange"
	"bookshare-backend/internal/api/review"
	"bookshare-backend/internal/api/user"
	"bookshare-backend/internal/middleware"
	"bookshare-backend/internal/repository/mysql"
	"bookshare-backend/internal/service"
	"bookshare-backend/internal/storage"
	"bookshare-backend/internal/util"
	"bookshare-backend/internal/ws"
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			util.Logger.Error("程序发生严重错误", zap.Any("error", r))
		}
	}()

	// 初始化配置
	config.Init()

	// 初始化日志
	util.InitLogger(config.AppConfig.LogLevel)
	defer util.Logger.Sync()

	util.Logger.Info("应用程序启动")

	// 设置数据库连接字符串
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		config.AppConfig.DBUser,
		config.AppConfig.DBPassword,
		config.AppConfig.DBHost,
		config.AppConfig.DBPort,
		config.AppConfig.DBName)

	// 连接数据库
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		util.Logger.Fatal("连接数据库失败", zap.Error(err))
	}
	defer db.Close()

	// 测试数据库连接
	if err = db.Ping(); err != nil {
		util.Logger.Fatal("数据库连接测试失败", zap.Error(err))
	}
	util.Logger.Info("数据库连接成功")

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	util.Logger.Info("数据库连接池配置完成")

	// 注册自定义验证器
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("book_condition", util.ValidateBookCondition)
		v.RegisterValidation("offer_type", util.ValidateOfferType)
	}

	// 确保上传文件夹存在
	ensureUploadsFolder()

	// 按配置选择存储后端
	fileStorage, err := storage.NewStorage()
	if err != nil {
		util.Logger.Fatal("初始化文件存储失败", zap.Error(err))
	}

	// 初始化存储库、服务和处理器
	userRepo := mysql.NewUserRepository(db)
	bookRepo := mysql.NewBookRepository(db)
	exchangeRepo := mysql.NewExchangeRepository(db)
	messageRepo := mysql.NewMessageRepository(db)
	reviewRepo := mysql.NewReviewRepository(db)

	emailService := service.NewEmailService()
	userService := service.NewUserService(userRepo, emailService)
	bookService := service.NewBookService(bookRepo)
	exchangeService := service.NewExchangeService(exchangeRepo, bookRepo, db)
	chatService := service.NewChatService(messageRepo, userRepo)
	reviewService := service.NewReviewService(reviewRepo, exchangeRepo, db)

	// 启动 WebSocket Hub
	hub := ws.NewHub()
	go hub.Run()

	authHandler := user.NewAuthHandler(userService)
	profileHandler := user.NewProfileHandler(userService, fileStorage)
	userHandler := user.NewUserHandler(userService)
	bookHandler := book.NewBookHandler(bookService, fileStorage)
	exchangeHandler := exchange.NewExchangeHandler(exchangeService)
	reviewHandler := review.NewReviewHandler(reviewService)
	chatHandler := chat.NewChatHandler(chatService, hub)

	// 初始化错误监控
	errorMonitor := middleware.NewErrorMonitor()

	// 设置 Gin 路由
	r := gin.Default()
	r.MaxMultipartMemory = config.AppConfig.MaxUploadSize

	// 添加中间件
	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.ErrorMonitorMiddleware(errorMonitor))

	// 配置 CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{config.AppConfig.FrontendURL}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Length",
		"Content-Type",
		"Authorization",
	}
	corsConfig.ExposeHeaders = []string{
		"Content-Length",
		"Content-Type",
		"Access-Control-Allow-Origin",
	}

	r.Use(cors.New(corsConfig))

	// 静态文件的 CORS 单独处理
	r.Use(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/uploads/") {
			c.Header("Access-Control-Allow-Origin", config.AppConfig.FrontendURL)
			c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type")

			if c.Request.Method == "OPTIONS" {
				c.AbortWithStatus(200)
				return
			}
		}
		c.Next()
	})

	// 配置静态文件服务
	r.Static("/uploads", config.AppConfig.LocalStoragePath)

	// WebSocket 入口
	r.GET("/ws", ws.ServeWS(hub))

	// 定义 API 路由
	api := r.Group("/api")
	{
		// 认证相关路由
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/verify-email/:token", authHandler.VerifyEmail)
			auth.POST("/resend-verification", authHandler.ResendVerification)
			auth.GET("/profile", middleware.AuthMiddleware(), profileHandler.GetProfile)
			auth.DELETE("/delete-account", middleware.AuthMiddleware(), authHandler.DeleteAccount)
		}

		// 用户相关路由
		users := api.Group("/users")
		users.Use(middleware.AuthMiddleware())
		{
			users.GET("", userHandler.GetUsers)
			users.PUT("/profile", profileHandler.UpdateProfile)
			users.GET("/:id", userHandler.GetUserByID)
		}

		// 书籍相关路由
		books := api.Group("/books")
		books.Use(middleware.AuthMiddleware())
		{
			books.POST("", bookHandler.CreateBook)
			books.GET("", bookHandler.ListBooks)
			books.GET("/my-books", bookHandler.GetMyBooks)
			books.GET("/:id", bookHandler.GetBook)
			books.PUT("/:id", bookHandler.UpdateBook)
			books.DELETE("/:id", bookHandler.DeleteBook)
		}

		// 交换相关路由
		exchanges := api.Group("/exchanges")
		exchanges.Use(middleware.AuthMiddleware())
		{
			exchanges.POST("", exchangeHandler.CreateExchange)
			exchanges.GET("/received", exchangeHandler.GetReceivedExchanges)
			exchanges.GET("/sent", exchangeHandler.GetSentExchanges)
			exchanges.PUT("/:id/status", exchangeHandler.UpdateStatus)
			exchanges.PUT("/:id/complete", exchangeHandler.CompleteExchange)
		}

		// 评价相关路由
		reviews := api.Group("/reviews")
		reviews.Use(middleware.AuthMiddleware())
		{
			reviews.POST("", reviewHandler.CreateReview)
			reviews.GET("/user/:userId", reviewHandler.GetUserReviews)
		}

		// 私信相关路由
		chatRoutes := api.Group("/chat")
		chatRoutes.Use(middleware.AuthMiddleware())
		{
			chatRoutes.POST("/send", chatHandler.SendMessage)
			chatRoutes.GET("/conversations", chatHandler.GetConversations)
			chatRoutes.GET("/:userId", chatHandler.GetConversation)
		}
	}

	// 创建一个带有超时的 http.Server
	srv := &http.Server{
		Addr:    ":" + config.AppConfig.Port,
		Handler: r,
	}

	// 在一个新的 goroutine 中启动服务器
	go func() {
		util.Logger.Info("服务器正在启动", zap.String("port", config.AppConfig.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			util.Logger.Fatal("启动服务器失败", zap.Error(err))
		}
	}()

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	util.Logger.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		util.Logger.Fatal("服务器强制关闭", zap.Error(err))
	}

	util.Logger.Info("服务器已优雅关闭")
}

// 确保上传文件夹存在
func ensureUploadsFolder() {
	uploadsPath := config.AppConfig.LocalStoragePath
	if err := os.MkdirAll(uploadsPath, 0755); err != nil {
		util.Logger.Fatal("创建上传文件夹失败", zap.Error(err), zap.String("path", uploadsPath))
	}
	util.Logger.Info("上传文件夹已创建或已存在", zap.String("path", uploadsPath))
}
