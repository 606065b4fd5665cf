package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bobarin/kobanashi/internal/api"
	"github.com/bobarin/kobanashi/internal/config"
	"github.com/bobarin/kobanashi/internal/db"
	"github.com/bobarin/kobanashi/internal/models"
	"github.com/bobarin/kobanashi/internal/pipeline"
	"github.com/bobarin/kobanashi/internal/queue"
	"github.com/bobarin/kobanashi/internal/storage"
	"github.com/bobarin/kobanashi/internal/worker"
)

func main() {
	log.Println("Starting kobanashi server...")

	srvCfg, err := config.LoadServer()
	if err != nil {
		log.Fatalf("Failed to load server config: %v", err)
	}

	pipelineCfg, err := config.Load(srvCfg.PipelineConfigPath)
	if err != nil {
		log.Fatalf("Failed to load pipeline config %s: %v", srvCfg.PipelineConfigPath, err)
	}

	database, err := db.New(srvCfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	log.Println("Connected to database")

	q, err := queue.New(srvCfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to queue: %v", err)
	}
	defer q.Close()
	log.Println("Connected to Redis queue")

	stor := storage.New(srvCfg.SupabaseURL, srvCfg.SupabaseServiceKey, srvCfg.SupabaseStorageBucket)
	log.Println("Initialized Supabase storage")

	handler := api.NewHandler(database, q, stor)
	router := api.NewRouter(handler, api.RouterConfig{
		BackendAPIKey:      srvCfg.BackendAPIKey,
		CorsAllowedOrigins: srvCfg.CorsAllowedOrigins,
	})

	if srvCfg.BackendAPIKey != "" {
		log.Println("API key authentication enabled")
	} else {
		log.Println("WARNING: No BACKEND_API_KEY set — API is unprotected (dev mode)")
	}

	server := &http.Server{
		Addr:    ":" + srvCfg.APIPort,
		Handler: router,
	}

	var workerCtx context.Context
	var workerCancel context.CancelFunc
	if srvCfg.WorkerEnabled {
		log.Println("Worker enabled, starting background processing...")

		pl := pipeline.New(pipelineCfg)
		paths := models.NewProjectPaths(pipelineCfg.Project.OutputDir)
		w := worker.New(database, q, stor, pl, paths)

		workerCtx, workerCancel = context.WithCancel(context.Background())
		go w.Start(workerCtx, srvCfg.WorkerConcurrency)
	}

	go func() {
		log.Printf("kobanashi server listening on :%s", srvCfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	if workerCancel != nil {
		workerCancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
