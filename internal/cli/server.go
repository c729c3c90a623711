package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"iq-report-service/internal/app"
	"iq-report-service/internal/config"
	"iq-report-service/internal/gateway/mercadopago"
	"iq-report-service/internal/infra/memory"
	pgstore "iq-report-service/internal/infra/postgres"
	redisstore "iq-report-service/internal/infra/redis"
	"iq-report-service/internal/quiz"
	transport "iq-report-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the IQ report server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 0)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	// Sessions prefer the durable store; redis serves deployments without
	// postgres, memory is for local runs only.
	var store app.SessionStore
	switch {
	case pool != nil:
		store = pgstore.NewSessionStore(pool)
	case redisClient != nil:
		store = redisstore.NewSessionStore(redisClient, redisTTL)
	default:
		log.Warn("no postgres or redis configured, sessions are in-memory")
		store = memory.NewSessionStore()
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	bank := quiz.NewRepository(quiz.NewStaticBankLoader(quiz.DefaultBank()), quizTTL)

	var payments *mercadopago.Client
	var lookup app.PaymentLookup
	if cfg.Providers.MercadoPago.AccessToken != "" {
		payments, err = mercadopago.NewClient(cfg.Providers.MercadoPago.AccessToken)
		if err != nil {
			return err
		}
		lookup = payments
	}

	hub := app.NewStatusHub()
	sessions := app.NewSessionService(store, bank, hub, log)
	reconciler := app.NewReconciler(store, lookup, hub, log, cfg.Reconciler.AllowFallback)
	reports := app.NewReportGate(store, bank)

	handler := transport.NewHandler(sessions, reconciler, reports, payments, transport.Options{
		WebhookSecrets: map[string]string{
			"kiwify":      cfg.Providers.Kiwify.WebhookSecret,
			"mercadopago": cfg.Providers.MercadoPago.WebhookSecret,
		},
		AllowUnsigned:     cfg.Reconciler.AllowUnsigned,
		KiwifyCheckoutURL: cfg.Providers.Kiwify.CheckoutURL,
		PixAmount:         cfg.Providers.MercadoPago.PixAmount,
		PixDescription:    cfg.Providers.MercadoPago.PixDescription,
	}, log)
	wsHandler := transport.NewWSHandler(sessions, hub, log)

	mux := http.NewServeMux()
	handler.Register(mux)
	mux.HandleFunc("GET /ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.WithField("port", finalPort).Info("starting iq report service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server...")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
