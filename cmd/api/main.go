package main

import (
	"os"

	_ "github.com/ahmad-fahrudin/point-of-sales-backend/api/swagger" // swagger docs
	"github.com/ahmad-fahrudin/point-of-sales-backend/internal/database"
	"github.com/ahmad-fahrudin/point-of-sales-backend/internal/handler"
	"github.com/ahmad-fahrudin/point-of-sales-backend/internal/middleware"
	"github.com/ahmad-fahrudin/point-of-sales-backend/internal/repository"
	"github.com/ahmad-fahrudin/point-of-sales-backend/internal/service"
	"github.com/ahmad-fahrudin/point-of-sales-backend/internal/storage"
	"github.com/ahmad-fahrudin/point-of-sales-backend/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Point of Sale API
// @version         1.0
// @description     Backend for the POS app: catalog, checkout, credit ledger, spendings, and daily revenue reports.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		logrus.Info("no configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		logrus.WithError(err).Fatal("database connection failed")
	}
	logrus.Info("connected to PostgreSQL successfully")

	receiptsDir := os.Getenv("RECEIPTS_DIR")
	if receiptsDir == "" {
		receiptsDir = "data/receipts"
	}

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	orderRepo := repository.NewOrderRepository(db)
	spendingRepo := repository.NewSpendingRepository(db)
	revenueRepo := repository.NewRevenueRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)

	receiptStore := storage.NewLocalReceiptStore(receiptsDir)

	reportService := service.NewReportService(revenueRepo, spendingRepo, txManager, wsHub)
	orderService := service.NewOrderService(orderRepo, productRepo, txManager, reportService, wsHub)
	spendingService := service.NewSpendingService(spendingRepo, reportService, receiptStore, wsHub)
	productService := service.NewProductService(productRepo, categoryRepo, wsHub)
	categoryService := service.NewCategoryService(categoryRepo, wsHub)

	// Initialize Handlers
	orderHandler := handler.NewOrderHandler(orderService)
	spendingHandler := handler.NewSpendingHandler(spendingService)
	reportHandler := handler.NewReportHandler(reportService)
	productHandler := handler.NewProductHandler(productService)
	categoryHandler := handler.NewCategoryHandler(categoryService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:8081", "http://localhost:19006"} // Expo dev URLs
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	orderHandler.RegisterRoutes(router.Group(""))
	spendingHandler.RegisterRoutes(router.Group(""))
	reportHandler.RegisterRoutes(router.Group(""))
	productHandler.RegisterRoutes(router.Group(""))
	categoryHandler.RegisterRoutes(router.Group(""))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logrus.Infof("server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		logrus.WithError(err).Fatal("server failed")
	}
}
