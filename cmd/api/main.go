package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"github.com/caseeracademy/sky-agent-platform-sub002/internal/config"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/database"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/jobs"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/queue"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/routes"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/services/application"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/services/ledger"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/services/wallet"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg := config.LoadConfig()

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Printf("Warning: redis unavailable, cycle job locking disabled: %v", err)
		redisClient = nil
	}

	// Services
	walletSvc := wallet.NewWalletService(db)
	ledgerSvc := ledger.NewLedgerService(db, cfg.Scholarship, walletSvc)
	appSvc := application.NewApplicationService(db, ledgerSvc)

	// Background job queue
	jobQueue := queue.NewQueue(db)
	systemJob := jobs.NewSystemScholarshipJob(ledgerSvc, jobQueue)
	systemJob.Register()
	jobQueue.StartProcessing()

	// Daily scholarship cycle maintenance
	scheduler := gocron.NewScheduler(time.UTC)
	cycleJob := jobs.NewScholarshipCycleJob(ledgerSvc, redisClient)
	if err := cycleJob.Schedule(scheduler, cfg.Scholarship.CycleMonth, cfg.Scholarship.CycleDay); err != nil {
		log.Fatalf("Failed to schedule cycle job: %v", err)
	}
	scheduler.StartAsync()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	routes.RegisterRoutes(router, db, cfg, ledgerSvc, walletSvc, appSvc, systemJob)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		fmt.Printf("Agent platform API running on port %s\n", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	scheduler.Stop()
	jobQueue.StopProcessing()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
