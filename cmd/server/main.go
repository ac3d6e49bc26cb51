// Command server runs the citizen licence portal API.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"chalak/internal/audit"
	"chalak/internal/authlocal"
	"chalak/internal/exam"
	"chalak/internal/platform/config"
	"chalak/internal/platform/httpserver"
	"chalak/internal/platform/logger"
	"chalak/internal/platform/metrics"
	"chalak/internal/platform/postgres"
	platformredis "chalak/internal/platform/redis"
	"chalak/internal/profile"
	"chalak/internal/registration"
	"chalak/internal/session"
	httpapi "chalak/internal/transport/http"
	"chalak/internal/verification"
)

func main() {
	log := logger.New()

	if err := run(log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg := config.FromEnv()
	m := metrics.New()

	db, err := postgres.Open(cfg.Postgres)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	auditor, closeAuditor, err := buildAuditor(cfg, log)
	if err != nil {
		return err
	}
	defer closeAuditor()

	var profileStore profile.Store = profile.NewMemoryStore()
	var roleStore session.RoleStore = session.NewMemoryRoleStore()
	if db != nil {
		profileStore = profile.NewPostgresStore(db)
		roleStore = session.NewPostgresRoleStore(db)
	}

	var verificationStore verification.Store = verification.NewMemoryStore()
	var examStore exam.Store = exam.NewMemoryStore()
	if redisClient != nil {
		verificationStore = verification.NewRedisStore(redisClient)
		examStore = exam.NewRedisStore(redisClient)
	}

	provider := authlocal.NewProvider([]byte(cfg.JWTSigningKey), authlocal.WithLogger(log))

	profileSvc := profile.NewService(profileStore, profile.NewMemoryBlobStore(), m,
		profile.WithLogger(log), profile.WithAuditPublisher(auditor))
	verificationSvc := verification.NewService(verificationStore, profileSvc, m,
		verification.WithLogger(log), verification.WithAuditPublisher(auditor))
	examSvc := exam.NewService(examStore, verificationSvc, m,
		exam.WithLogger(log), exam.WithAuditPublisher(auditor))
	registrationSvc := registration.NewService(provider, profileSvc, m,
		registration.WithLogger(log), registration.WithAuditPublisher(auditor))
	sessions := session.NewCoordinator(roleStore,
		session.WithLogger(log), session.WithAuditPublisher(auditor))

	handler := httpapi.New(httpapi.Deps{
		Registration: registrationSvc,
		Profile:      profileSvc,
		Verification: verificationSvc,
		Exam:         examSvc,
		Auth:         provider,
		Sessions:     sessions,
		Roles:        roleStore,
		Logger:       log,
	})

	server := httpserver.New(cfg.Addr, handler)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// buildAuditor wires the Kafka publisher when brokers are configured, else a
// no-op sink.
func buildAuditor(cfg config.Server, log *slog.Logger) (audit.Publisher, func(), error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return audit.NopPublisher{}, func() {}, nil
	}

	publisher, err := audit.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic, log)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := publisher.Close(ctx); err != nil {
			log.Error("close audit publisher", "error", err)
		}
	}
	return publisher, closeFn, nil
}
