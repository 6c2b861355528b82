package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/Gachenge/school-portal/internal/config"
	"github.com/Gachenge/school-portal/internal/database"
	"github.com/Gachenge/school-portal/internal/handler"
	"github.com/Gachenge/school-portal/internal/middleware"
	"github.com/Gachenge/school-portal/internal/queue"
	"github.com/Gachenge/school-portal/internal/repository"
	"github.com/Gachenge/school-portal/internal/router"
	"github.com/Gachenge/school-portal/internal/service"
)

func main() {
	// .env is optional; real deployments set the variables directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(database.Params{
		User:     cfg.DBUser,
		Pass:     cfg.DBPass,
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		Name:     cfg.DBName,
		MaxConns: cfg.DBMaxConns,
	})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		// Sessions cannot be issued without the refresh-token registry.
		log.Fatal("redis: connection failed")
	}

	// Email delivery runs in the background; the server keeps serving while
	// the consumer reconnects to the broker.
	go func() {
		if err := queue.StartEmailConsumer(); err != nil {
			log.Printf("email consumer stopped: %v", err)
		}
	}()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRegistry(rdb)
	books := repository.NewBookRepo(db)
	members := repository.NewMemberRepo(db)
	loans := repository.NewLoanRepo(db)
	students := repository.NewStudentRepo(db)
	teachers := repository.NewTeacherRepo(db)
	subjects := repository.NewSubjectRepo(db)
	grades := repository.NewGradeRepo(db)
	blogs := repository.NewBlogRepo(db)
	comments := repository.NewCommentRepo(db)

	mailer := service.QueueMailer{}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.Register(e, router.Handlers{
		Auth:     handler.NewAuthHandler(cfg, users, tokens, mailer),
		Users:    handler.NewUserHandler(cfg, users, mailer),
		Library:  handler.NewLibraryHandler(cfg, books, members, loans),
		Students: handler.NewStudentHandler(students),
		Teachers: handler.NewTeacherHandler(teachers, grades),
		Subjects: handler.NewSubjectHandler(subjects),
		Blogs:    handler.NewBlogHandler(blogs),
		Comments: handler.NewCommentHandler(comments),
	}, cfg.JWTSecret, users)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
