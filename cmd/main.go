package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IamGODofNEWWORLD/MeShare/config"
	"github.com/IamGODofNEWWORLD/MeShare/internal/api/board"
	"github.com/IamGODofNEWWORLD/MeShare/internal/errors"
	"github.com/IamGODofNEWWORLD/MeShare/internal/kv"
	"github.com/IamGODofNEWWORLD/MeShare/internal/middleware"
	"github.com/IamGODofNEWWORLD/MeShare/internal/service"
	"github.com/IamGODofNEWWORLD/MeShare/internal/store"
	"github.com/IamGODofNEWWORLD/MeShare/internal/util"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
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
	util.InitLogger(config.AppConfig.LogLevel, config.AppConfig.Debug)
	defer util.Logger.Sync()

	util.Logger.Info("应用程序启动")

	// 注册自定义验证器
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("datestr", util.ValidateDateString)
	}

	// 初始化键值存储后端
	kvService, closeKV, err := openKV()
	if err != nil {
		util.Logger.Fatal("初始化键值存储失败", zap.Error(err))
	}
	if closeKV != nil {
		defer closeKV()
	}
	util.Logger.Info("键值存储就绪", zap.String("backend", config.AppConfig.KVBackend))

	// 初始化状态存储和服务
	boardStore := store.New(kvService)
	boardStore.Load(context.Background())

	boardService := service.NewBoardService(boardStore)
	boardHandler := board.NewBoardHandler(boardService)

	// 初始化错误分析
	errorAnalytics := errors.NewErrorAnalytics()

	// 设置 Gin 路由
	r := gin.Default()

	// 添加中间件
	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.ErrorMonitorMiddleware(errorAnalytics))

	// 配置 CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{config.AppConfig.FrontendURL}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Length",
		"Content-Type",
	}
	r.Use(cors.New(corsConfig))

	// 定义 API 路由
	api := r.Group("/api")
	{
		// 掲示板
		api.GET("/board", boardHandler.GetBoard)
		api.POST("/posts", boardHandler.CreatePost)
		api.POST("/posts/:id/status", boardHandler.ToggleStatus)
		api.POST("/posts/:id/thanks", boardHandler.ThankPost)
		api.GET("/posts/:id/comments", boardHandler.ListComments)
		api.POST("/posts/:id/comments", boardHandler.CreateComment)

		// 临期食品
		api.GET("/expiry-items", boardHandler.ListExpiryItems)
		api.POST("/expiry-items", boardHandler.CreateExpiryItem)
		api.DELETE("/expiry-items/:id", boardHandler.DeleteExpiryItem)
		api.GET("/expiry-items/:id/draft", boardHandler.DraftFromExpiryItem)

		// 实绩
		api.GET("/stats", boardHandler.GetStats)
	}

	// 调试模式下暴露错误统计
	if config.AppConfig.Debug {
		r.GET("/debug/errors", func(c *gin.Context) {
			c.JSON(http.StatusOK, errorAnalytics.GetStats())
		})
	}

	// 创建一个带有超时的 http.Server
	srv := &http.Server{
		Addr:    config.AppConfig.ListenAddr,
		Handler: r,
	}

	// 在一个新的 goroutine 中启动服务器
	go func() {
		util.Logger.Info("服务器正在启动", zap.String("addr", config.AppConfig.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			util.Logger.Fatal("启动服务器失败", zap.Error(err))
		}
	}()

	// 等待中断信号以优雅地关闭服务器（设置 5 秒的超时时间）
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

// openKV 按配置选择键值存储后端
func openKV() (kv.Service, func() error, error) {
	cfg := config.AppConfig
	switch cfg.KVBackend {
	case "local":
		s, err := kv.NewLocal(cfg.LocalStoragePath)
		return s, nil, err
	case "sqlite":
		s, err := kv.NewSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
		s, err := kv.NewMySQL(dsn)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "s3":
		s, err := kv.NewS3(cfg.S3Region, cfg.S3Bucket)
		return s, nil, err
	case "gcs":
		s, err := kv.NewGCS(context.Background(), cfg.GCSBucketName, cfg.GCSCredentialsFile)
		return s, nil, err
	default:
		return nil, nil, errors.New(errors.ErrInternal, "未知的 KV 后端")
	}
}
