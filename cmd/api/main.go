package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finmgmt/internal/infrastructure/postgres/listener"
	"finmgmt/internal/interfaces/scheduler"
	"finmgmt/internal/shared/config"
	"finmgmt/internal/shared/telemetry"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := context.Background()

	if cfg.Telemetry.Enabled {
		shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
			ServiceName:  cfg.Telemetry.ServiceName,
			Environment:  cfg.Telemetry.Environment,
			OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
			MetricsPort:  cfg.Telemetry.MetricsPort,
			SampleRatio:  cfg.Telemetry.SampleRatio,
		})
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTelemetry(shutdownCtx); err != nil {
				log.Printf("Error shutting down telemetry: %v", err)
			}
		}()
	}

	deps, err := NewDependencies(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	// Initialize scheduler (if enabled)
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		log.Println("Initializing scheduler...")
		sched, err = scheduler.NewScheduler(scheduler.Config{
			ScheduleTimes: cfg.Scheduler.ScheduleTimes,
			WorkerCount:   cfg.Scheduler.WorkerCount,
			JobDelay:      cfg.Scheduler.JobDelay,
			QueueSize:     cfg.Scheduler.QueueSize,
			RunOnStartup:  cfg.Scheduler.RunOnStartup,
			JobProvider:   dailyCloseProvider(deps, cfg),
		})
		if err != nil {
			return err
		}
		sched.Start()
		log.Printf("Scheduler started with times: %v", cfg.Scheduler.ScheduleTimes)
	} else {
		log.Println("Scheduler is disabled")
	}

	// Rebuild the summary whenever Postgres reports a change
	var lst *listener.FinancialListener
	if deps.Backend.DB != nil && sched != nil {
		lst = listener.NewFinancialListener(cfg.Database.ConnectionString(), func(n listener.ChangeNotification) {
			job := scheduler.NewSummaryJob(deps.SummaryService, strings.TrimSpace(n.Table+" "+n.Operation))
			if err := sched.Submit(job); err != nil {
				log.Printf("Failed to queue summary rebuild: %v", err)
			}
		})
		lst.Start(ctx)
	}

	handler := SetupRoutes(deps, cfg)
	servers := StartServers(NewServerConfigFromConfig(handler, cfg))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-quit:
		log.Printf("Received %s", sig)
	case serveErr = <-servers.Errors:
		log.Printf("Server failed: %v", serveErr)
	}

	var stopper changeListener
	if lst != nil {
		stopper = lst
	}
	GracefulShutdown(servers, sched, stopper, 30*time.Second)
	return serveErr
}

func dailyCloseProvider(deps *Dependencies, cfg *config.Config) scheduler.JobProvider {
	return func(ctx context.Context) ([]scheduler.Job, error) {
		sweep := scheduler.NewOverdueSweepJob(deps.TransactionService, deps.Backend.Notifier, deps.Messages, cfg.Finance.BaseCurrency)
		rebuild := scheduler.NewSummaryJob(deps.SummaryService, "schedule")
		return []scheduler.Job{scheduler.NewDailyCloseJob(sweep, rebuild)}, nil
	}
}
