package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"collections-cloud/internal/audit"
	"collections-cloud/internal/auth"
	billingapp "collections-cloud/internal/billing/application"
	billingrepo "collections-cloud/internal/billing/infrastructure/postgres"
	billinghttp "collections-cloud/internal/billing/interfaces/http"
	clientsapp "collections-cloud/internal/clients/application"
	clientsrepo "collections-cloud/internal/clients/infrastructure/postgres"
	clientshttp "collections-cloud/internal/clients/interfaces/http"
	collectorsapp "collections-cloud/internal/collectors/application"
	collectorsrepo "collections-cloud/internal/collectors/infrastructure/postgres"
	collectorshttp "collections-cloud/internal/collectors/interfaces/http"
	creditsapp "collections-cloud/internal/credits/application"
	credits "collections-cloud/internal/credits/domain"
	creditsrepo "collections-cloud/internal/credits/infrastructure/postgres"
	creditshttp "collections-cloud/internal/credits/interfaces/http"
	"collections-cloud/internal/observability/metrics"
	reportsapp "collections-cloud/internal/reports/application"
	reportsinterfaces "collections-cloud/internal/reports/interfaces"
	sweepapp "collections-cloud/internal/sweep/application"
	sweepnotify "collections-cloud/internal/sweep/notify"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)
	auditRepo := audit.NewRepository(db)

	clientRepo := clientsrepo.NewClientRepository(db)
	clientChecker := auth.NewClientChecker(clientRepo)
	clientService, err := clientsapp.NewClientService(clientRepo, cfg.TenantID)
	if err != nil {
		logger.Fatalf("client service error: %v", err)
	}
	clientHandler, err := clientshttp.NewHandler(clientService, auditRepo)
	if err != nil {
		logger.Fatalf("client handler error: %v", err)
	}

	collectorRepo := collectorsrepo.NewCollectorRepository(db)
	collectorService, err := collectorsapp.NewCollectorService(collectorRepo, cfg.TenantID)
	if err != nil {
		logger.Fatalf("collector service error: %v", err)
	}
	collectorHandler, err := collectorshttp.NewHandler(collectorService, auditRepo)
	if err != nil {
		logger.Fatalf("collector handler error: %v", err)
	}

	creditRepo := creditsrepo.NewCreditRepository(db)
	paymentRepo := creditsrepo.NewPaymentRepository(db)
	creditService, err := creditsapp.NewCreditService(creditRepo, paymentRepo, credits.SystemClock{}, cfg.TenantID)
	if err != nil {
		logger.Fatalf("credit service error: %v", err)
	}
	creditHandler, err := creditshttp.NewHandler(creditService, clientChecker, auditRepo)
	if err != nil {
		logger.Fatalf("credit handler error: %v", err)
	}

	reportService, err := reportsapp.NewReportService(creditRepo, paymentRepo, credits.SystemClock{}, cfg.TenantID)
	if err != nil {
		logger.Fatalf("report service error: %v", err)
	}
	reportHandler, err := reportsinterfaces.NewHandler(reportService, auditRepo)
	if err != nil {
		logger.Fatalf("report handler error: %v", err)
	}

	subscriptionRepo := billingrepo.NewSubscriptionRepository(db)
	billingService, err := billingapp.NewBillingService(subscriptionRepo, nil)
	if err != nil {
		logger.Fatalf("billing service error: %v", err)
	}
	billingHandler, err := billinghttp.NewHandler(billingService, auditRepo)
	if err != nil {
		logger.Fatalf("billing handler error: %v", err)
	}

	sweepCfg, err := sweepapp.LoadConfig()
	if err != nil {
		logger.Fatalf("sweep config error: %v", err)
	}
	if len(sweepCfg.Tenants) == 0 {
		sweepCfg.Tenants = []string{cfg.TenantID}
	}
	var sweepNotifier sweepnotify.Notifier
	if sweepCfg.WebhookURL != "" {
		sweepNotifier = sweepnotify.NewWebhookNotifier(sweepCfg.WebhookURL)
	}
	sweeper, err := sweepapp.NewSweeper(creditRepo, paymentRepo, credits.SystemClock{}, sweepCfg, sweepNotifier, logger)
	if err != nil {
		logger.Fatalf("sweeper error: %v", err)
	}
	sweepScheduler, err := sweepapp.NewScheduler(sweeper, sweepCfg.Schedule.Cron, logger)
	if err != nil {
		logger.Fatalf("sweep scheduler error: %v", err)
	}
	if err := sweepScheduler.Start(context.Background()); err != nil {
		logger.Fatalf("sweep scheduler start error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/clients", clientHandler)
	mux.Handle("/api/v1/clients/", clientHandler)
	mux.Handle("/api/v1/collectors", collectorHandler)
	mux.Handle("/api/v1/collectors/", collectorHandler)
	mux.Handle("/api/v1/credits", creditHandler)
	mux.Handle("/api/v1/credits/", creditHandler)
	mux.Handle("/api/v1/reports/portfolio", reportHandler)
	mux.Handle("/api/v1/billing/subscriptions", billingHandler)
	mux.Handle("/api/v1/billing/subscriptions/", billingHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL string
	HTTPAddr    string
	TenantID    string
	JWTSecret   string
}

func loadConfig() config {
	cfg := config{
		DatabaseURL: getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:    getenvDefault("HTTP_ADDR", ":8080"),
		TenantID:    getenvDefault("TENANT_ID", "tenant-demo"),
		JWTSecret:   getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
