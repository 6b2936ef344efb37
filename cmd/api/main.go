package main

import (
	_ "backend/api/swagger" // swagger docs
	"backend/internal/database"
	"backend/internal/handler"
	"backend/internal/mailer"
	"backend/internal/middleware"
	"backend/internal/pdfclient"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/internal/websocket"
	"backend/internal/wizard"
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Sales CRM API
// @version         1.0
// @description     Sales CRM backend: lead pool, inquiries, clients and the proposal workflow.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
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
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Permission middleware needs DB access for role lookups
	middleware.InitPermissionMiddleware(db)

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// External services
	pdfURL := os.Getenv("PDF_SERVICE_URL")
	if pdfURL == "" {
		pdfURL = "http://localhost:8090"
	}
	pdfClient := pdfclient.New(pdfURL)

	var mail mailer.Mailer
	if mailURL := os.Getenv("MAIL_SERVICE_URL"); mailURL != "" {
		mail = mailer.NewHTTP(mailURL)
	} else {
		mail = mailer.NewNop()
	}

	// Wizard session store with idle sweep
	wizardStore := wizard.NewStore()
	sweeperStop := make(chan struct{})
	go wizardStore.RunSweeper(10*time.Minute, sweeperStop)
	defer close(sweeperStop)

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	clientRepo := repository.NewClientRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	inquiryRepo := repository.NewInquiryRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	proposalRepo := repository.NewProposalRepository(db)

	userService := service.NewUserService(userRepo)
	roleService := service.NewRoleService(db)
	auditService := service.NewAuditService(auditRepo)
	clientService := service.NewClientService(clientRepo, auditRepo, txManager)
	leadService := service.NewLeadService(leadRepo, inquiryRepo, auditRepo, txManager)
	inquiryService := service.NewInquiryService(inquiryRepo, auditRepo, txManager)
	templateService := service.NewTemplateService(templateRepo)
	proposalService := service.NewProposalService(proposalRepo, inquiryRepo, auditRepo, txManager, mail, wsHub)
	wizardService := service.NewWizardService(wizardStore, templateService, proposalService, proposalRepo, inquiryRepo)
	statisticsService := service.NewStatisticsService(db)

	// Seed roles/permissions and starter templates
	if err := roleService.SeedDefaultRolesAndPermissions(context.Background()); err != nil {
		log.Println("WARNING: Failed to seed roles and permissions:", err)
	}
	if err := database.SeedDefaultTemplates(db); err != nil {
		log.Println("WARNING: Failed to seed proposal templates:", err)
	}

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleService)
	auditHandler := handler.NewAuditHandler(auditService)
	clientHandler := handler.NewClientHandler(clientService)
	leadHandler := handler.NewLeadHandler(leadService)
	inquiryHandler := handler.NewInquiryHandler(inquiryService)
	templateHandler := handler.NewTemplateHandler(templateService)
	proposalHandler := handler.NewProposalHandler(proposalService, pdfClient)
	wizardHandler := handler.NewWizardHandler(wizardService)
	statisticsHandler := handler.NewStatisticsHandler(statisticsService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
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
	userHandler.RegisterRoutes(router.Group(""))
	roleHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))
	clientHandler.RegisterRoutes(router.Group(""))
	leadHandler.RegisterRoutes(router.Group(""))
	inquiryHandler.RegisterRoutes(router.Group(""))
	templateHandler.RegisterRoutes(router.Group(""))
	proposalHandler.RegisterRoutes(router.Group(""))
	wizardHandler.RegisterRoutes(router.Group(""))
	statisticsHandler.RegisterRoutes(router.Group(""))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
