package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"sportclub/internal/config"
	"sportclub/internal/db"
	"sportclub/internal/email"
	"sportclub/internal/logger"
	"sportclub/internal/member"
	"sportclub/internal/membership"
	"sportclub/internal/reminder"
	"sportclub/internal/scheduler"
	"sportclub/internal/server"
	"sportclub/internal/sweeper"
)

// @title Sport Club Membership API
// @version 1.0
// @description Membership catalog, purchases, visits and lifecycle jobs.
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logger.Setup(cfg.LogLevel, cfg.LogFormat)
	logger.Info("Starting sport club application", "timezone", cfg.Location.String())

	logger.Info("Connecting to database...")
	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 15*time.Second)
	database, err := db.Connect(connectCtx, cfg.DatabaseURL)
	cancelConnect()
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer database.Close()
	logger.Info("Database connected")

	version, err := db.RunMigrations(database, cfg.MigrationsPath)
	if err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed", "schema_version", version)

	emailService := email.New(
		cfg.EmailFrom,
		cfg.EmailFromName,
		cfg.SMTPHost,
		cfg.SMTPPort,
		cfg.SMTPUser,
		cfg.SMTPPass,
		cfg.RedisAddr,
	)
	defer emailService.Close()
	logger.Info("Email service initialized")

	memberRepo := member.NewRepository(database)
	membershipRepo := membership.NewRepository(database)

	memberService := member.NewService(memberRepo)
	membershipService := membership.NewService(membershipRepo, memberRepo, emailService, cfg.Location, cfg.CatalogCacheTTL)
	sweep := sweeper.New(membershipRepo)
	notifier := reminder.NewNotifier(membershipRepo, emailService)

	var host *scheduler.Host
	if cfg.SchedulerEnabled {
		host, err = scheduler.New(jobTable(cfg, sweep, notifier), scheduler.WithLocation(cfg.Location))
		if err != nil {
			logger.Fatal("Invalid job schedule", "error", err)
		}
	}

	srv := server.New(server.Deps{
		Config:      cfg,
		Members:     memberService,
		Memberships: membershipService,
		Sweeper:     sweep,
		Notifier:    notifier,
		Scheduler:   host,
		Checks: map[string]server.Check{
			"postgres": database.PingContext,
			"redis":    emailService.Ping,
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		emailService.Start(gctx)
		return nil
	})

	if host != nil {
		g.Go(func() error {
			host.Start()
			<-gctx.Done()
			stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return host.Stop(stopCtx)
		})
	}

	g.Go(func() error {
		return srv.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		logger.Errorf("Shutdown with error: %v", err)
		return
	}
	logger.Info("Server stopped")
}

func jobTable(cfg *config.Config, sweep *sweeper.Sweeper, notifier *reminder.Notifier) []scheduler.Task {
	return []scheduler.Task{
		{
			Name:     "deactivate-expired-memberships",
			Schedule: cfg.SweepSchedule,
			Timeout:  cfg.JobTimeout,
			Run: func(ctx context.Context) error {
				report, err := sweep.Sweep(ctx, time.Now().In(cfg.Location))
				if err != nil {
					return err
				}
				if n := len(report.Failures); n > 0 {
					return fmt.Errorf("%d of %d memberships could not be expired", n, report.Selected)
				}
				return nil
			},
		},
		{
			Name:     "send-membership-expiry-reminders",
			Schedule: cfg.ReminderSchedule,
			Timeout:  cfg.JobTimeout,
			Run: func(ctx context.Context) error {
				_, err := notifier.NotifyExpiring(ctx, time.Now().In(cfg.Location), cfg.ReminderHorizonDays)
				return err
			},
		},
	}
}
