package main

import (
	"context"
	"log"

	"finmgmt/internal/domain/payment"
	"finmgmt/internal/domain/summary"
	"finmgmt/internal/domain/transaction"
	"finmgmt/internal/infrastructure/backend"
	httphandlers "finmgmt/internal/interfaces/http"
	"finmgmt/internal/shared/auth"
	"finmgmt/internal/shared/config"
	"finmgmt/internal/shared/messages"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	Backend *backend.Backend

	// Domain services
	TransactionService *transaction.Service
	PaymentService     *payment.Service
	SummaryService     *summary.Service
	Messages           *messages.Messages

	// Handlers
	TransactionHandler *httphandlers.TransactionHandler
	PaymentHandler     *httphandlers.PaymentHandler
	SummaryHandler     *httphandlers.SummaryHandler
	ReportHandler      *httphandlers.ReportHandler
	PageHandler        *httphandlers.PageHandler

	// Auth
	Verifier auth.Verifier
}

// NewDependencies initializes all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	b, err := backend.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	msgs, err := messages.Load(cfg.Finance.MessagesFile)
	if err != nil {
		b.Close()
		return nil, err
	}

	verifier, err := newVerifier(ctx, cfg, b)
	if err != nil {
		b.Close()
		return nil, err
	}

	// Initialize domain services
	transactionService := transaction.NewService(b.Transactions, b.Publisher)
	paymentService := payment.NewService(b.Payments, b.Publisher)
	summaryService := summary.NewService(b.Summary, b.Transactions, b.Payments, b.Publisher, cfg.Finance.BaseCurrency)

	return &Dependencies{
		Backend:            b,
		TransactionService: transactionService,
		PaymentService:     paymentService,
		SummaryService:     summaryService,
		Messages:           msgs,
		TransactionHandler: httphandlers.NewTransactionHandler(transactionService),
		PaymentHandler:     httphandlers.NewPaymentHandler(paymentService),
		SummaryHandler:     httphandlers.NewSummaryHandler(summaryService),
		ReportHandler:      httphandlers.NewReportHandler(transactionService, paymentService),
		PageHandler:        httphandlers.NewPageHandler(transactionService, paymentService, summaryService, cfg.Finance.BaseCurrency),
		Verifier:           verifier,
	}, nil
}

func newVerifier(ctx context.Context, cfg *config.Config, b *backend.Backend) (auth.Verifier, error) {
	if cfg.Auth.Provider == config.AuthProviderFirebase {
		client, err := b.Firebase.Auth(ctx)
		if err != nil {
			return nil, err
		}
		log.Println("Authenticating with Firebase ID tokens")
		return auth.NewFirebaseVerifier(client), nil
	}

	log.Println("Authenticating with HS256 JWTs")
	return auth.NewJWT(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL), nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.Backend != nil {
		d.Backend.Close()
	}
}
