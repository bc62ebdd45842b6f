package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/TrainerKiri/CorrigeProvas/internal/api/http"
	auth "github.com/TrainerKiri/CorrigeProvas/internal/auth/middleware"
	"github.com/TrainerKiri/CorrigeProvas/internal/config"
	"github.com/TrainerKiri/CorrigeProvas/internal/db"
	"github.com/TrainerKiri/CorrigeProvas/internal/exam"
	rbac "github.com/TrainerKiri/CorrigeProvas/internal/rbac"
	syncx "github.com/TrainerKiri/CorrigeProvas/internal/sync"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := exam.NewSQLStore(dbh, cfg.DBDriver)
	events := syncx.NewEventRepo(dbh)

	// --- Auth ---
	authSvc := auth.NewAuthService(cfg.AuthSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, auth.LoginCheck{
		User:     cfg.TeacherUser,
		PassHash: cfg.TeacherPassHash,
	}))

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.With(rbac.Require("exam:create")).
			Post("/exams", api.CreateExamHandler(store, events))
		pr.With(rbac.Require("exam:create")).
			Post("/exams/points", api.AllocatePointsHandler())
		pr.With(rbac.Require("exam:view")).
			Get("/exams", api.ListExamsHandler(store))
		pr.With(rbac.Require("exam:view")).
			Get("/exams/{examID}", api.GetExamHandler(store))
		pr.With(rbac.Require("exam:delete")).
			Delete("/exams/{examID}", api.DeleteExamHandler(store, events))

		pr.With(rbac.Require("student:manage")).
			Post("/students", api.CreateStudentHandler(store))
		pr.With(rbac.Require("student:view")).
			Get("/students", api.ListStudentsHandler(store))
		pr.With(rbac.Require("student:manage")).
			Delete("/students/{studentID}", api.DeleteStudentHandler(store))

		pr.With(rbac.Require("result:write")).
			Post("/exams/{examID}/grade", api.GradeExamHandler(store, events))
		pr.With(rbac.RequireAny("result:view", "analytics:view")).
			Get("/exams/{examID}/results", api.ListResultsHandler(store))

		pr.With(rbac.Require("analytics:view")).
			Get("/exams/{examID}/stats", api.ExamStatsHandler(store))
		pr.With(rbac.Require("exam:view")).
			Get("/dashboard", api.DashboardHandler(store))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
