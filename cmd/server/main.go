package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/retana1885/Canave.ia/config"
	"github.com/retana1885/Canave.ia/db"
	"github.com/retana1885/Canave.ia/handlers"
	"github.com/retana1885/Canave.ia/internal/session"
	"github.com/retana1885/Canave.ia/internal/utils"
	"github.com/retana1885/Canave.ia/services"
	"github.com/retana1885/Canave.ia/tools"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("config: no .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: failed to load: %v", err)
	}

	logger, err := utils.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("logger: failed to build: %v", err)
	}
	defer logger.Sync()

	if !cfg.OpenAI.Configured() {
		logger.Warn("falta OPENAI_API_KEY en secrets/env; el chat responderá con el mensaje de configuración")
	}
	if !cfg.SQL.Complete() {
		logger.Warn("credenciales SQL incompletas; las tools fallarán al tocar la base de datos")
	}

	source := db.NewSource(cfg.SQL)
	defer source.Close()

	registry := tools.NewRegistry(source)
	chatService := services.NewChatService(cfg.OpenAI, registry, logger.Sugar())
	store := session.NewStore(services.SystemPrompt)

	router := setupRouter(store, chatService)

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr), zap.String("model", cfg.OpenAI.Model))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server crashed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}

	logger.Info("server stopped cleanly")
}

func setupRouter(store *session.Store, chatService *services.ChatService) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	handlers.NewHandler(store, chatService).RegisterRoutes(router)

	return router
}
