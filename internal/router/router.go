// internal/router/router.go
package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/javajoker/kpay-backend/internal/config"
	"github.com/javajoker/kpay-backend/internal/handlers"
	"github.com/javajoker/kpay-backend/internal/middleware"
	"github.com/javajoker/kpay-backend/internal/services"
	"github.com/javajoker/kpay-backend/internal/utils"
)

// Initialize wires services and handlers over one commit engine and returns
// the HTTP engine. The contracts must already be deployed on chain.
func Initialize(db *gorm.DB, cfg *config.Config, chain *services.Chain) (*gin.Engine, error) {
	// Initialize services
	metadataService, err := services.NewMetadataService(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metadata service: %w", err)
	}

	authService := services.NewAuthService(db, cfg)
	contractService := services.NewContractService(db, chain)
	tokenService := services.NewTokenService(db, chain)
	marketplaceService := services.NewMarketplaceService(db, chain)
	exchangeService := services.NewExchangeService(db, chain)
	factoryService := services.NewFactoryService(db, chain, cfg.Ledger.CreationFee)
	schedulerService := services.NewSchedulerService(db, chain)
	eventService := services.NewEventService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	contractHandler := handlers.NewContractHandler(contractService)
	tokenHandler := handlers.NewTokenHandler(tokenService)
	marketplaceHandler := handlers.NewMarketplaceHandler(marketplaceService, metadataService)
	exchangeHandler := handlers.NewExchangeHandler(exchangeService)
	factoryHandler := handlers.NewFactoryHandler(factoryService)
	schedulerHandler := handlers.NewSchedulerHandler(schedulerService)
	eventHandler := handlers.NewEventHandler(eventService)
	healthHandler := handlers.NewHealthHandler(db)
	adminHandler := handlers.NewAdminHandler(contractService, marketplaceService, exchangeService, factoryService, schedulerService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	generalLimit := middleware.NewRateLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.I18nMiddleware(cfg.I18n.DefaultLocale))
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	r.Use(generalLimit.Middleware())
	r.Use(middleware.AuditLogMiddleware(db, logrus.StandardLogger()))

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimiter().Middleware())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", middleware.AuthRequired(), authHandler.Me)
		}

		// Token ledger routes
		tokens := v1.Group("/tokens")
		{
			tokens.GET("/:address", tokenHandler.GetToken)
			tokens.GET("/:address/balances/:holder", tokenHandler.GetBalance)
			tokens.GET("/:address/allowances/:owner/:spender", tokenHandler.GetAllowance)

			protected := tokens.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("/:address/approve", tokenHandler.Approve)
				protected.POST("/:address/transfer", tokenHandler.Transfer)
				protected.POST("/:address/transfer-from", tokenHandler.TransferFrom)
				protected.POST("/:address/mint", tokenHandler.Mint)
				protected.POST("/:address/burn", tokenHandler.Burn)
			}
		}

		// NFT marketplace routes
		nfts := v1.Group("/nfts")
		{
			nfts.GET("/owner/:holder", marketplaceHandler.GetAssetsOf)
			nfts.GET("/:id", marketplaceHandler.GetNFT)
			nfts.GET("/:id/metadata", marketplaceHandler.GetMetadata)

			protected := nfts.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", marketplaceHandler.CreateNFT)
				protected.POST("/:id/transfer", marketplaceHandler.TransferNFT)
				protected.POST("/:id/list", marketplaceHandler.ListItem)
				protected.POST("/:id/cancel", marketplaceHandler.CancelListing)
				protected.PUT("/:id/price", marketplaceHandler.UpdateListingPrice)
				protected.POST("/:id/buy", marketplaceHandler.BuyNFT)
			}
		}

		marketplace := v1.Group("/marketplace")
		{
			marketplace.GET("/listings", marketplaceHandler.GetListings)
			marketplace.GET("/listings/:id", marketplaceHandler.GetListing)
		}

		// Digital asset exchange routes
		exchange := v1.Group("/exchange")
		{
			exchange.GET("/count", exchangeHandler.GetListingCount)
			exchange.GET("/listings", exchangeHandler.GetListings)
			exchange.GET("/listings/:id", exchangeHandler.GetListing)

			protected := exchange.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("/listings", exchangeHandler.ListItem)
				protected.POST("/listings/:id/cancel", exchangeHandler.CancelListing)
				protected.PUT("/listings/:id/price", exchangeHandler.UpdateListingPrice)
				protected.POST("/listings/:id/buy", exchangeHandler.BuyAsset)
			}
		}

		// Token factory routes
		factory := v1.Group("/factory")
		{
			factory.GET("/fee", factoryHandler.GetCreationFee)
			factory.GET("/tokens", factoryHandler.GetAllTokens)
			factory.GET("/tokens/user/:address", factoryHandler.GetUserTokens)
			factory.POST("/tokens", middleware.AuthRequired(), factoryHandler.CreateToken)
		}

		// Purchase scheduler routes
		scheduler := v1.Group("/scheduler")
		{
			protected := scheduler.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("/orders", schedulerHandler.CreateOrder)
				protected.DELETE("/orders", schedulerHandler.CancelOrder)
				protected.POST("/orders/execute", schedulerHandler.ExecuteOrder)
				protected.GET("/orders/me", schedulerHandler.GetMyOrder)
			}
			scheduler.GET("/orders/:owner", schedulerHandler.GetOrder)
		}

		// Contract reads
		contracts := v1.Group("/contracts")
		{
			contracts.GET("", contractHandler.GetContracts)
			contracts.GET("/:kind", contractHandler.GetContract)
			contracts.GET("/:kind/treasury", contractHandler.GetTreasury)
		}

		v1.GET("/events", eventHandler.GetEvents)

		// Admin routes. The contract owner check happens in the ledger.
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired())
		{
			admin.POST("/contracts/:kind/pause", adminHandler.Pause)
			admin.POST("/contracts/:kind/unpause", adminHandler.Unpause)
			admin.POST("/contracts/:kind/withdraw", adminHandler.Withdraw)
			admin.POST("/contracts/:kind/ownership", adminHandler.TransferOwnership)
			admin.POST("/factory/kpay-token", adminHandler.SetKpayToken)
			admin.POST("/factory/withdraw", adminHandler.WithdrawFees)
			admin.POST("/scheduler/withdraw", adminHandler.WithdrawSchedulerTokens)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		utils.NotFoundResponse(c, "")
	})

	return r, nil
}
