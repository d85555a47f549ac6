package backend

import (
	"context"
	"fmt"
	"log"

	"finmgmt/internal/domain/event"
	"finmgmt/internal/domain/payment"
	"finmgmt/internal/domain/summary"
	"finmgmt/internal/domain/transaction"
	"finmgmt/internal/infrastructure/cache"
	"finmgmt/internal/infrastructure/firebase"
	"finmgmt/internal/infrastructure/firestore"
	"finmgmt/internal/infrastructure/kafka"
	"finmgmt/internal/infrastructure/postgres"
	"finmgmt/internal/shared/config"
)

// Notifier pushes alerts to finance managers.
type Notifier interface {
	Notify(ctx context.Context, title, body string, data map[string]string) error
}

// Backend holds the repositories for the configured store together with the
// optional cache, event publisher and push notifier.
type Backend struct {
	Transactions transaction.Repository
	Payments     payment.Repository
	Summary      summary.Repository

	// DB is set only for the postgres backend.
	DB *postgres.DB
	// Firebase is set when a Firebase project is configured.
	Firebase *firebase.App

	Publisher event.Publisher
	// Notifier is nil when push alerts are not configured.
	Notifier Notifier

	closers []func() error
}

// Open connects the store selected by cfg.Store.Backend and the optional
// services around it. Optional services that fail to connect are logged and
// skipped.
func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	b := &Backend{Publisher: event.NopPublisher{}}

	if cfg.Firebase.ProjectID != "" || cfg.Firebase.CredentialsFile != "" {
		app, err := firebase.NewApp(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
		if err != nil {
			return nil, err
		}
		b.Firebase = app
	}

	switch cfg.Store.Backend {
	case config.BackendPostgres:
		if err := b.openPostgres(ctx, cfg); err != nil {
			b.Close()
			return nil, err
		}
	case config.BackendFirestore:
		if err := b.openFirestore(ctx); err != nil {
			b.Close()
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	if cfg.Redis.Enabled() {
		client, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Printf("Warning: summary cache disabled: %v", err)
		} else {
			b.Summary = cache.NewSummaryRepository(b.Summary, client, cfg.Redis.SummaryTTL)
			b.closers = append(b.closers, client.Close)
		}
	}

	if cfg.Kafka.Enabled() {
		publisher, err := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.ConnectAttempts)
		if err != nil {
			log.Printf("Warning: event publishing disabled: %v", err)
		} else {
			b.Publisher = publisher
			b.closers = append(b.closers, publisher.Close)
		}
	}

	if b.Firebase != nil && (cfg.Finance.AlertTopic != "" || len(cfg.Finance.AlertTokens) > 0) {
		msgClient, err := b.Firebase.Messaging(ctx)
		if err != nil {
			log.Printf("Warning: overdue alerts disabled: %v", err)
		} else {
			b.Notifier = firebase.NewNotifier(msgClient, cfg.Finance.AlertTopic, cfg.Finance.AlertTokens)
		}
	}

	return b, nil
}

func (b *Backend) openPostgres(ctx context.Context, cfg *config.Config) error {
	db, err := postgres.New(ctx, cfg.Database.ConnectionString(), postgres.PoolConfig{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return err
	}
	b.DB = db
	b.closers = append(b.closers, db.Close)
	log.Println("Connected to database")

	if cfg.Store.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			return err
		}
	}

	b.Transactions = postgres.NewTransactionRepository(db)
	b.Payments = postgres.NewPaymentRepository(db)
	b.Summary = postgres.NewSummaryRepository(db)
	return nil
}

func (b *Backend) openFirestore(ctx context.Context) error {
	if b.Firebase == nil {
		return fmt.Errorf("firestore backend requires a firebase project")
	}

	client, err := b.Firebase.Firestore(ctx)
	if err != nil {
		return err
	}
	b.closers = append(b.closers, client.Close)
	log.Println("Connected to Firestore")

	repos := firestore.NewRepositories(client)
	b.Transactions = repos.Transactions
	b.Payments = repos.Payments
	b.Summary = repos.Summary
	return nil
}

// Close releases connections in reverse order of opening.
func (b *Backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			log.Printf("Error closing backend resource: %v", err)
		}
	}
	b.closers = nil
}
