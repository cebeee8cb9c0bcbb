package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"planboard/internal/config"
	"planboard/internal/handler"
	"planboard/internal/hub"
	"planboard/internal/middleware"
	"planboard/internal/model"
	"planboard/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Hub    *hub.Hub
	Config *config.Config
}

func Init(cfg *config.Config) (*Server, error) {
	// Setup GORM
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("❌ failed to connect to DB: %w", err)
	}
	log.Println("✅ Connected to database")

	if err := db.AutoMigrate(
		&model.User{},
		&model.Board{},
		&model.List{},
		&model.Card{},
		&model.Task{},
		&model.Label{},
		&model.Membership{},
		&model.Attachment{},
		&model.Comment{},
		&model.CardMembership{},
		&model.CardLabel{},
		&model.TaskMembership{},
	); err != nil {
		return nil, fmt.Errorf("❌ failed to migrate schema: %w", err)
	}

	// Setup Gin
	r := gin.Default()

	// Push hub
	pushHub := hub.New()
	go pushHub.Run()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	boardRepo := repository.NewBoardRepository(db)
	listRepo := repository.NewListRepository(db)
	cardRepo := repository.NewCardRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	labelRepo := repository.NewLabelRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)

	// Initialize handlers
	userHandler := handler.NewUserHandler(userRepo, cfg)
	boardHandler := handler.NewBoardHandler(boardRepo, membershipRepo, pushHub)
	listHandler := handler.NewListHandler(listRepo, boardRepo, membershipRepo, pushHub)
	cardHandler := handler.NewCardHandler(cardRepo, listRepo, boardRepo, membershipRepo, pushHub)
	taskHandler := handler.NewTaskHandler(taskRepo, cardRepo, boardRepo, membershipRepo, pushHub)
	labelHandler := handler.NewLabelHandler(labelRepo, boardRepo, membershipRepo, pushHub)
	membershipHandler := handler.NewMembershipHandler(membershipRepo, boardRepo, userRepo, pushHub)
	attachmentHandler := handler.NewAttachmentHandler(attachmentRepo, cardRepo, boardRepo, membershipRepo, pushHub)
	commentHandler := handler.NewCommentHandler(commentRepo, cardRepo, boardRepo, membershipRepo, pushHub)
	snapshotHandler := handler.NewSnapshotHandler(snapshotRepo, boardRepo, membershipRepo)
	socketHandler := handler.NewSocketHandler(pushHub, boardRepo, membershipRepo)

	// Public routes
	r.POST("/register", userHandler.Register)
	r.POST("/login", userHandler.Login)

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	{
		// Board routes
		authorized.GET("/boards", boardHandler.GetAll)
		authorized.POST("/boards", boardHandler.Create)
		authorized.PATCH("/boards/:id", boardHandler.Update)
		authorized.DELETE("/boards/:id", boardHandler.Delete)
		authorized.POST("/boards/:id/move", boardHandler.Move)
		authorized.GET("/boards/:id/snapshot", snapshotHandler.Get)
		authorized.GET("/ws/boards/:id", socketHandler.Subscribe)

		// List routes
		authorized.POST("/lists", listHandler.Create)
		authorized.PATCH("/lists/:id", listHandler.Update)
		authorized.DELETE("/lists/:id", listHandler.Delete)
		authorized.POST("/lists/:id/move", listHandler.Move)

		// Card routes
		authorized.POST("/cards", cardHandler.Create)
		authorized.PATCH("/cards/:id", cardHandler.Update)
		authorized.DELETE("/cards/:id", cardHandler.Delete)
		authorized.POST("/cards/:id/move", cardHandler.Move)

		// Task routes
		authorized.POST("/tasks", taskHandler.Create)
		authorized.PATCH("/tasks/:id", taskHandler.Update)
		authorized.DELETE("/tasks/:id", taskHandler.Delete)
		authorized.POST("/tasks/:id/move", taskHandler.Move)

		// Label routes
		authorized.POST("/labels", labelHandler.Create)
		authorized.PATCH("/labels/:id", labelHandler.Update)
		authorized.DELETE("/labels/:id", labelHandler.Delete)

		// Membership routes
		authorized.POST("/memberships", membershipHandler.Create)
		authorized.PATCH("/memberships/:id", membershipHandler.Update)
		authorized.DELETE("/memberships/:id", membershipHandler.Delete)

		// Attachment routes
		authorized.POST("/attachments", attachmentHandler.Create)
		authorized.PATCH("/attachments/:id", attachmentHandler.Update)
		authorized.DELETE("/attachments/:id", attachmentHandler.Delete)

		// Comment routes
		authorized.POST("/comments", commentHandler.Create)
		authorized.PATCH("/comments/:id", commentHandler.Update)
		authorized.DELETE("/comments/:id", commentHandler.Delete)
	}

	return &Server{
		Engine: r,
		DB:     db,
		Hub:    pushHub,
		Config: cfg,
	}, nil
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		log.Printf("🚀 Server running on port %s\n", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %s", err)
	}

	log.Println("✅ Server exited properly")
}
