package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	consumerhandlers "paygate/cmd/consumers/handlers"
	"paygate/cmd/web/handlers"
	"paygate/cmd/web/validator"
	"paygate/internal/audit"
	"paygate/internal/challenge"
	"paygate/internal/events"
	"paygate/internal/health"
	"paygate/internal/instruments"
	"paygate/internal/partnercfg"
	"paygate/internal/payerauth"
	"paygate/internal/riskchallenge"
	"paygate/internal/sessionstore"
	"paygate/kit/broker"
	"paygate/kit/observability"
	"paygate/kit/tracing"
)

var (
	port              int
	dataDir           string
	payerAuthURL      string
	payerAuthVersion  string
	riskChallengeURL  string
	notifyBaseURL     string
	sessionTTLMinutes int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the payment authentication gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := os.MkdirAll(dataDir, 0o700); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}

		logger := observability.NewLogger()
		metricsKit := observability.NewMetrics()
		bus := broker.New()
		defer bus.Close()

		sessionTTL := time.Duration(sessionTTLMinutes) * time.Minute
		store, err := sessionstore.NewBoltFromFile(dataDir+"/sessions.db", sessionTTL)
		if err != nil {
			return fmt.Errorf("failed to open session store: %w", err)
		}
		defer func() { _ = store.Close() }()

		auditSvc, err := audit.NewServiceWithFile(logger, dataDir+"/audit.jsonl")
		if err != nil {
			return fmt.Errorf("failed to open audit log: %w", err)
		}
		defer func() { _ = auditSvc.Close() }()

		httpClient := &http.Client{Timeout: 15 * time.Second}
		authClient := payerauth.NewClient(payerAuthURL, payerAuthVersion, httpClient)
		riskClient := riskchallenge.NewClient(riskChallengeURL, httpClient)

		partnerCache := partnercfg.NewCache(partnercfg.StaticSource{
			Default: &partnercfg.Settings{
				StepUpEnabled:        true,
				RiskChallengeEnabled: true,
				DefaultLanguage:      "en-US",
			},
		}, 5*time.Minute, true)

		// The orchestrator publishes domain events for every transition; the
		// metrics consumer below turns those into counters. Passing it a nil
		// Metrics keeps each transition counted exactly once.
		orch := challenge.NewOrchestrator(
			challenge.Config{ChallengeNotificationURL: notifyBaseURL},
			authClient,
			riskClient,
			store,
			partnerCache,
			instruments.NewStaticResolver(),
			bus,
			nil,
		)

		auditHandler := consumerhandlers.NewAuditEvent(auditSvc)
		metricsHandler := consumerhandlers.NewMetricsEvent(metricsKit)
		for _, name := range []string{
			(events.SessionCreated{}).Name(),
			(events.ChallengeRequired{}).Name(),
			(events.ChallengePassed{}).Name(),
			(events.ChallengeFailed{}).Name(),
			(events.RiskChallengeAttached{}).Name(),
			(events.RiskChallengeDegraded{}).Name(),
		} {
			bus.Subscribe(name, auditHandler.HandleAny)
			bus.Subscribe(name, metricsHandler.HandleAny)
		}

		healthSvc := health.NewService(2*time.Second, map[string]health.CheckFunc{
			"sessionstore":  health.StoreCheck(store),
			"payerauth":     health.EndpointCheck(httpClient, payerAuthURL),
			"riskchallenge": health.EndpointCheck(httpClient, riskChallengeURL),
		})

		sessionH := handlers.NewSession(validator.NewJSON(), orch)
		healthH := handlers.NewHealth(healthSvc)
		metricsH := handlers.NewMetrics(metricsKit)

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(correlate)

		r.Post("/paymentSessions", sessionH.Create)
		r.Post("/paymentSessions/{id}/resolveMethodUrl", sessionH.ResolveMethodURL)
		r.Post("/paymentSessions/{id}/authenticate", sessionH.Authenticate)
		r.Post("/paymentSessions/{id}/notifyChallengeCompleted", sessionH.NotifyChallengeCompleted)
		r.Post("/paymentSessions/{id}/riskChallenge", sessionH.AttachRiskChallenge)
		r.Get("/paymentSessions/{id}/status", sessionH.Status)
		r.Get("/health", healthH.Handler)
		r.Get("/metrics", metricsH.Handler)

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 2 * time.Second,
		}

		done := make(chan error, 1)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				done <- err
				return
			}
			done <- nil
		}()

		logger.Info("web server started", "addr", srv.Addr, "data_dir", dataDir)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("shutting down", "signal", sig.String())
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				return fmt.Errorf("server shutdown failed: %w", err)
			}
			return nil
		case err := <-done:
			return err
		}
	},
}

// correlate threads the caller's correlation id (or a fresh one) through the
// request context so backend calls and audit lines share it.
func correlate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		act := tracing.NewActivityFrom(r.Header.Get("Correlation-Id"))
		w.Header().Set("Correlation-Id", act.CorrelationID)
		next.ServeHTTP(w, r.WithContext(tracing.With(r.Context(), act)))
	})
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on")
	serveCmd.Flags().StringVar(&dataDir, "data-dir", "./out", "Directory for persistent data")
	serveCmd.Flags().StringVar(&payerAuthURL, "payerauth-url", "http://localhost:9080", "Base URL of the payer authentication backend")
	serveCmd.Flags().StringVar(&payerAuthVersion, "payerauth-api-version", "v1.0", "Api-Version header sent to the payer authentication backend")
	serveCmd.Flags().StringVar(&riskChallengeURL, "riskchallenge-url", "http://localhost:9081", "Base URL of the risk challenge backend")
	serveCmd.Flags().StringVar(&notifyBaseURL, "notify-url", "http://localhost:8080/paymentSessions", "Base URL the challenge completion callback is built from")
	serveCmd.Flags().IntVar(&sessionTTLMinutes, "session-ttl", 30, "Payment session lifetime in minutes")
}
