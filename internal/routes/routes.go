package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/caseeracademy/sky-agent-platform-sub002/internal/config"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/handlers"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/jobs"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/middleware"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/services/application"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/services/catalog"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/services/ledger"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/services/wallet"
)

// RegisterRoutes configures all API routes
func RegisterRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, ledgerSvc *ledger.LedgerService, walletSvc *wallet.WalletService, appSvc *application.ApplicationService, systemJob *jobs.SystemScholarshipJob) {
	catalogSvc := catalog.NewCatalogService(db)
	// 60 requests per second per IP with a burst of 10
	rateLimiter := middleware.NewRateLimiter(60, 10)
	router.Use(rateLimiter.Middleware())

	authHandler := handlers.NewAuthHandler(db)
	applicationHandler := handlers.NewApplicationHandler(db, appSvc)
	adminApplicationHandler := handlers.NewAdminApplicationHandler(db, appSvc, systemJob)
	walletHandler := handlers.NewWalletHandler(db, walletSvc)
	payoutHandler := handlers.NewPayoutHandler(db, walletSvc)
	adminPayoutHandler := handlers.NewAdminPayoutHandler(db, walletSvc)
	scholarshipHandler := handlers.NewScholarshipHandler(db, ledgerSvc, cfg.Scholarship)
	adminScholarshipHandler := handlers.NewAdminScholarshipHandler(db, ledgerSvc, cfg.Scholarship)
	catalogHandler := handlers.NewCatalogHandler(db, catalogSvc)
	adminCatalogHandler := handlers.NewAdminCatalogHandler(db, catalogSvc)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
		}

		// Agent routes - require authentication
		protected := v1.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.GET("/me", authHandler.Me)

			protected.GET("/universities", catalogHandler.ListUniversities)
			protected.GET("/programs", catalogHandler.ListPrograms)

			students := protected.Group("/students")
			{
				students.POST("/", catalogHandler.RegisterStudent)
				students.GET("/", catalogHandler.ListStudents)
			}

			applications := protected.Group("/applications")
			{
				applications.POST("/", applicationHandler.CreateApplication)
				applications.GET("/", applicationHandler.ListApplications)
				applications.GET("/:id", applicationHandler.GetApplication)
				applications.POST("/:id/submit", applicationHandler.SubmitApplication)
				applications.POST("/:id/cancel", applicationHandler.CancelApplication)
			}

			protected.GET("/wallet", walletHandler.GetWallet)
			protected.GET("/wallet/transactions", walletHandler.GetTransactions)

			payouts := protected.Group("/payouts")
			{
				payouts.POST("/", payoutHandler.RequestPayout)
				payouts.GET("/", payoutHandler.ListPayouts)
			}

			scholarships := protected.Group("/scholarships")
			{
				scholarships.GET("/progress", scholarshipHandler.GetProgress)
				scholarships.GET("/awards", scholarshipHandler.ListAwards)
			}
		}

		// Admin routes - require admin role
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
		{
			admin.GET("/applications", adminApplicationHandler.ListApplications)
			admin.POST("/applications/:id/review", adminApplicationHandler.StartReview)
			admin.POST("/applications/:id/request-documents", adminApplicationHandler.RequestDocuments)
			admin.POST("/applications/:id/decide", adminApplicationHandler.Decide)
			admin.POST("/applications/:id/enroll", adminApplicationHandler.Enroll)

			admin.GET("/payouts", adminPayoutHandler.ListPayouts)
			admin.POST("/payouts/:id/approve", adminPayoutHandler.ApprovePayout)
			admin.POST("/payouts/:id/reject", adminPayoutHandler.RejectPayout)

			admin.POST("/universities", adminCatalogHandler.CreateUniversity)
			admin.POST("/programs", adminCatalogHandler.CreateProgram)
			admin.PUT("/scholarship-configs", adminCatalogHandler.SetScholarshipConfig)

			admin.GET("/scholarships/awards", adminScholarshipHandler.ListAwards)
			admin.PUT("/scholarships/awards/:id/status", adminScholarshipHandler.UpdateAwardStatus)
			admin.GET("/scholarships/system-progress", adminScholarshipHandler.GetSystemProgress)
		}
	}
}
