package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"regulatory-chatbot-backend/internal/ai"
	"regulatory-chatbot-backend/internal/config"
	"regulatory-chatbot-backend/internal/logger"
	"regulatory-chatbot-backend/internal/vectorstore/chroma"
	"regulatory-chatbot-backend/middleware"
	"regulatory-chatbot-backend/routes"
	"regulatory-chatbot-backend/services"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.InitLogger(cfg)

	ctx := context.Background()

	embedder, err := ai.NewGeminiEmbedder(ctx, cfg.GeminiAPIKey, cfg.EmbeddingsModel)
	if err != nil {
		log.Fatal("Failed to initialize embedder:", err)
	}
	defer embedder.Close()

	store, err := chroma.Connect(ctx, chroma.Config{
		Host:     cfg.ChromaHost,
		Port:     cfg.ChromaPort,
		Name:     cfg.CollectionName,
		Embedder: embedder,
	})
	if err != nil {
		log.Fatal("Failed to connect to ChromaDB:", err)
	}

	registry, err := ai.NewRegistry(cfg)
	if err != nil {
		log.Fatal("Failed to initialize model providers:", err)
	}

	chatService := services.NewChatService(store, registry)
	ingestionService, err := services.NewIngestionService(cfg, store)
	if err != nil {
		log.Fatal("Failed to initialize ingestion service:", err)
	}

	if cfg.Mode != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	routes.SetupHealthRoutes(router, store)
	routes.SetupChatRoutes(router, chatService, registry)
	routes.SetupAdminRoutes(router, cfg, ingestionService, store)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port, "mode", cfg.Mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
