package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/paramedtrack/paramedtrack/internal/api/http"
	"github.com/paramedtrack/paramedtrack/internal/audit"
	"github.com/paramedtrack/paramedtrack/internal/auth"
	"github.com/paramedtrack/paramedtrack/internal/clinical"
	"github.com/paramedtrack/paramedtrack/internal/config"
	"github.com/paramedtrack/paramedtrack/internal/db"
	"github.com/paramedtrack/paramedtrack/internal/eval"
	"github.com/paramedtrack/paramedtrack/internal/lab"
	"github.com/paramedtrack/paramedtrack/internal/notify"
	"github.com/paramedtrack/paramedtrack/internal/ratelimit"
	"github.com/paramedtrack/paramedtrack/internal/rbac"
	"github.com/paramedtrack/paramedtrack/internal/report"
	"github.com/paramedtrack/paramedtrack/internal/task"
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

	// --- Stores & services ---
	evalStore := eval.NewSQLStore(dbh)
	labStore := lab.NewSQLStore(dbh)
	clinStore := clinical.NewSQLStore(dbh)
	taskStore := task.NewSQLStore(dbh)
	notifyStore := notify.NewSQLStore(dbh)
	reporter := report.NewReporter(dbh)
	recorder := audit.NewRecorder(dbh)

	var sender notify.EmailSender
	if cfg.SendgridAPIKey != "" {
		sender = notify.NewSendgridSender(cfg.SendgridAPIKey, cfg.EmailFromName, cfg.EmailFrom)
	} else {
		sender = notify.NewConsoleSender()
	}
	notifier := notify.NewNotifier(notifyStore, sender, dbh)

	authSvc := auth.NewAuthService(cfg.AuthSecret)
	limiter := ratelimit.New(cfg.AuthRateLimit, time.Duration(cfg.AuthRateWindow)*time.Second)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Auth surface (rate-limited)
	r.Group(func(ar chi.Router) {
		ar.Use(ratelimit.Middleware(limiter))
		ar.Post("/auth/login", auth.LoginHandler(authSvc, dbh, cfg))
		if cfg.EnableGoogleAuth {
			ar.Get("/auth/google/login", auth.GoogleLoginHandler(cfg))
			ar.Get("/auth/google/callback", auth.GoogleCallbackHandler(authSvc, dbh, cfg))
		}
	})

	// Protected API (JWT → subject+role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		// Evaluations & grading
		pr.With(rbac.Require("eval:create")).
			Post("/evaluations", api.CreateEvaluationHandler(evalStore, recorder))
		pr.With(rbac.RequireAny("eval:view-all", "eval:view-own")).
			Get("/evaluations", api.ListEvaluationsHandler(evalStore))
		pr.With(rbac.Require("eval:view-all")).
			Get("/evaluations/{evaluationID}", api.GetEvaluationHandler(evalStore))
		pr.With(rbac.Require("eval:grade")).
			Put("/evaluations/{evaluationID}/scores/{scoreID}", api.UpdateScoreHandler(evalStore))
		pr.With(rbac.Require("eval:grade")).
			Post("/evaluations/{evaluationID}/scores/{scoreID}/complete",
				api.CompleteGradingHandler(evalStore, recorder, notifier))
		pr.With(rbac.RequireAny("eval:view-own", "eval:view-all")).
			Get("/students/{studentID}/scores", api.StudentScoresHandler(evalStore))

		// Lab scheduling
		pr.With(rbac.Require("lab:create")).
			Post("/labs", api.CreateLabSessionHandler(labStore))
		pr.With(rbac.Require("lab:view")).
			Get("/labs", api.ListLabSessionsHandler(labStore))
		pr.With(rbac.Require("lab:signup")).
			Post("/labs/{sessionID}/signup", api.LabSignupHandler(labStore, notifier))
		pr.With(rbac.Require("lab:signup")).
			Delete("/labs/{sessionID}/signup", api.LabCancelHandler(labStore))
		pr.With(rbac.Require("lab:roster")).
			Get("/labs/{sessionID}/roster", api.LabRosterHandler(labStore))

		// Clinical / internship tracking
		pr.With(rbac.Require("clinical:create")).
			Post("/clinical", api.CreateClinicalEntryHandler(clinStore))
		pr.With(rbac.RequireAny("clinical:view-own", "clinical:view-all")).
			Get("/clinical", api.ListClinicalEntriesHandler(clinStore))
		pr.With(rbac.Require("clinical:review")).
			Post("/clinical/{entryID}/review", api.ReviewClinicalEntryHandler(clinStore, recorder, notifier))
		pr.With(rbac.RequireAny("clinical:view-own", "clinical:view-all")).
			Get("/clinical/hours/{studentID}", api.ClinicalHoursHandler(clinStore))

		// Tasks
		pr.With(rbac.Require("task:create")).
			Post("/tasks", api.CreateTaskHandler(taskStore, notifier))
		pr.With(rbac.RequireAny("task:view-own", "task:view-all")).
			Get("/tasks", api.ListTasksHandler(taskStore))
		pr.With(rbac.RequireAny("task:update-own", "task:update")).
			Post("/tasks/{taskID}/status", api.UpdateTaskStatusHandler(taskStore))

		// Notifications
		pr.With(rbac.Require("notify:view")).
			Get("/notifications", api.ListNotificationsHandler(notifyStore))
		pr.With(rbac.Require("notify:view")).
			Post("/notifications/{notificationID}/read", api.MarkNotificationReadHandler(notifyStore))

		// Users
		pr.With(rbac.Require("users:list")).
			Get("/users", api.ListUsersHandler(dbh))
		pr.With(rbac.Require("user:change_password")).
			Post("/users/change-password", api.ChangePasswordHandler(dbh))

		// Reports
		pr.With(rbac.Require("report:view")).
			Get("/reports/pass-rates", api.PassRatesHandler(reporter))
		pr.With(rbac.Require("report:view")).
			Get("/reports/clinical-hours", api.ClinicalTotalsHandler(reporter))
		pr.With(rbac.Require("report:view")).
			Get("/reports/evaluations/{evaluationID}/export", api.ExportEvaluationCSVHandler(reporter))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
