package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"market-service/internal/db"
	"market-service/internal/handlers"
	"market-service/internal/middleware"
	"market-service/internal/observability"
	"market-service/internal/rabbitmq"
	"market-service/internal/repositories"
	"market-service/internal/telemetry"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	database, err := db.Connect()
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	ctx := context.Background()
	shutdownTracing, err := observability.SetupTracing(ctx, "market-service")
	if err != nil {
		log.Fatalf("failed to set up tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("tracing shutdown failed: %v", err)
		}
	}()

	publisher := rabbitmq.NewPublisher(os.Getenv("AMQP_URL"), getEnv("AMQP_EXCHANGE", "market.events"))
	defer publisher.Close()
	log.Printf("event publisher mode=%s", rabbitmq.PublisherMode(publisher))

	environment := getEnv("ENVIRONMENT", "development")
	emitter := telemetry.NewAuditEmitter(publisher, "market.audit", "market-service", environment)

	userRepo := repositories.NewUserRepo(database)
	productRepo := repositories.NewProductRepo(database)
	wishlistRepo := repositories.NewWishlistRepo(database)
	chatRepo := repositories.NewChatRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	negotiationRepo := repositories.NewNegotiationRepo(database)
	txRepo := repositories.NewTransactionRepo(database)
	reviewRepo := repositories.NewReviewRepo(database)

	authHandler := handlers.NewAuthHandler(userRepo, emitter)
	userHandler := handlers.NewUserHandler(userRepo, productRepo, reviewRepo, txRepo)
	productHandler := handlers.NewProductHandler(productRepo, emitter)
	uploadHandler := handlers.NewUploadHandler(getEnv("UPLOAD_DIR", "uploads"))
	wishlistHandler := handlers.NewWishlistHandler(wishlistRepo, productRepo)
	chatHandler := handlers.NewChatHandler(chatRepo, messageRepo, emitter)
	negotiationHandler := handlers.NewNegotiationHandler(negotiationRepo, publisher, emitter)
	txHandler := handlers.NewTransactionHandler(txRepo, publisher, emitter)
	reviewHandler := handlers.NewReviewHandler(reviewRepo, emitter)

	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("market-service"))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.Static("/uploads", getEnv("UPLOAD_DIR", "uploads"))

	authRequired := middleware.AuthMiddleware()
	optionalAuth := middleware.OptionalAuth()

	router.POST("/auth/register", authHandler.Register)
	router.POST("/auth/login", authHandler.Login)
	router.POST("/auth/logout", authHandler.Logout)
	router.GET("/auth/me", authRequired, authHandler.Me)

	router.GET("/users/:user_id", userHandler.Profile)
	router.GET("/mypage", authRequired, userHandler.MyPage)

	router.GET("/products", productHandler.List)
	router.GET("/search", productHandler.List)
	router.GET("/products/:id", optionalAuth, productHandler.Get)
	router.POST("/products", authRequired, productHandler.Create)
	router.PUT("/products/:id", authRequired, productHandler.Update)
	router.DELETE("/products/:id", authRequired, productHandler.Delete)

	router.POST("/upload", authRequired, uploadHandler.Upload)

	router.GET("/wishlist", authRequired, wishlistHandler.List)
	router.POST("/wishlist", authRequired, wishlistHandler.Add)
	router.DELETE("/wishlist", authRequired, wishlistHandler.Remove)

	router.GET("/chat", authRequired, chatHandler.List)
	router.POST("/chat", authRequired, chatHandler.Open)
	router.GET("/chat/check", authRequired, chatHandler.Check)
	router.GET("/chat/unread", authRequired, chatHandler.UnreadTotal)
	router.GET("/chat/:room_id", authRequired, chatHandler.Get)
	router.DELETE("/chat/:room_id", authRequired, chatHandler.Delete)
	router.GET("/chat/:room_id/messages", authRequired, chatHandler.Messages)
	router.POST("/chat/:room_id/messages", authRequired, chatHandler.Post)

	router.POST("/transactions/request", authRequired, negotiationHandler.Create)
	router.GET("/transactions/request", authRequired, negotiationHandler.State)
	router.DELETE("/transactions/request", authRequired, negotiationHandler.Cancel)
	router.POST("/transactions/request/respond", authRequired, negotiationHandler.Respond)
	router.GET("/transactions/requests", authRequired, negotiationHandler.ListForSeller)
	router.GET("/transactions/buyers", authRequired, negotiationHandler.BuyerCandidates)

	router.POST("/transactions", authRequired, txHandler.Settle)
	router.GET("/transactions", authRequired, txHandler.History)
	router.GET("/transactions/:id", authRequired, txHandler.Get)

	router.POST("/reviews", authRequired, reviewHandler.Submit)
	router.GET("/reviews", authRequired, reviewHandler.Mine)
	router.GET("/reviews/received", authRequired, reviewHandler.Received)
	router.GET("/reviews/eligibility/:transaction_id", authRequired, reviewHandler.Eligibility)

	handlers.RegisterDebugRoutes(router, emitter, environment != "production")

	port := getEnv("PORT", "8080")
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
