package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/ligue-leads/internal/config"
	"github.com/xavierca1/ligue-leads/internal/infra/database"
	"github.com/xavierca1/ligue-leads/internal/infra/http/handlers"
	"github.com/xavierca1/ligue-leads/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-leads/internal/infra/integration/meta"
	"github.com/xavierca1/ligue-leads/internal/infra/mail"
	"github.com/xavierca1/ligue-leads/internal/infra/worker"
	"github.com/xavierca1/ligue-leads/internal/usecase"
)

func main() {
	godotenv.Load()
	cfg := config.FromEnv()

	db, err := database.NewDBConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := database.EnsureSchema(context.Background(), db); err != nil {
		log.Fatal(err)
	}

	// 1. Repositories
	leadRepo := database.NewLeadRepository(db)
	logRepo := database.NewWebhookLogRepository(db)

	// 2. Integrations
	graphClient := meta.NewClient(cfg.MetaAccessToken, cfg.MetaGraphURL)

	var notifier usecase.LeadNotifier
	if cfg.LeadNotifyTo != "" && cfg.MailHost != "" {
		notifier = mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass, cfg.LeadNotifyTo)
	}

	// 3. Retention sweep for webhook logs
	retention := worker.NewRetentionWorker(logRepo)
	go retention.Start(context.Background())

	// 4. UseCases
	processUC := usecase.NewProcessWebhookUseCase(leadRepo, logRepo, graphClient, notifier, usecase.WebhookSecrets{
		MetaAppSecret:        cfg.MetaAppSecret,
		SnapchatClientSecret: cfg.SnapchatClientSecret,
		TikTokAppSecret:      cfg.TikTokAppSecret,
		Enforce:              cfg.IsProduction(),
	})
	updateUC := usecase.NewUpdateLeadUseCase(leadRepo)

	// 5. Handlers
	webhookHandler := handlers.NewWebhookHandler(processUC, cfg.MetaVerifyToken)
	leadHandler := handlers.NewLeadHandler(leadRepo, updateUC)
	healthHandler := handlers.NewHealthHandler(db)

	// 6. Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:5173", "*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
	}))

	r.Get("/webhooks/meta", webhookHandler.HandleMetaVerify)
	r.Post("/webhooks/meta", webhookHandler.HandleMeta)
	r.Post("/webhooks/snapchat", webhookHandler.HandleSnapchat)
	r.Post("/webhooks/tiktok", webhookHandler.HandleTikTok)

	r.Route("/api/leads", func(r chi.Router) {
		r.Get("/", leadHandler.HandleList)
		r.Get("/stats", leadHandler.HandleStats)
		r.Get("/chart", leadHandler.HandleChart)
		r.Get("/{id}", leadHandler.HandleGet)
		r.Patch("/{id}", leadHandler.HandleUpdate)
		r.Delete("/{id}", leadHandler.HandleDelete)
	})

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	if !cfg.IsProduction() {
		log.Println("⚠️ Signature verification disabled (APP_ENV != production)")
	}

	addr := ":" + cfg.Port
	log.Printf("🔥 Lead capture server running on %s", addr)
	http.ListenAndServe(addr, r)
}
