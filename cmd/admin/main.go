package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"

	"finmgmt/internal/domain/financial"
	"finmgmt/internal/domain/payment"
	"finmgmt/internal/domain/summary"
	"finmgmt/internal/domain/transaction"
	"finmgmt/internal/infrastructure/backend"
	"finmgmt/internal/infrastructure/spreadsheet"
	"finmgmt/internal/interfaces/scheduler"
	"finmgmt/internal/shared/auth"
	"finmgmt/internal/shared/config"
	"finmgmt/internal/shared/messages"
	"finmgmt/internal/shared/money"
)

const usage = `Financial admin CLI - Management commands for the financial service

Usage:
  admin <command> [options]

Commands:
  summary-rebuild   Rematerialize the financial summary document
  overdue-sweep     Mark past-due pending transactions overdue and alert managers
  transactions      Print every transaction, newest due date first
  export            Write the transactions spreadsheet
  token             Mint a development JWT

Examples:
  admin summary-rebuild
  admin overdue-sweep --timeout=2m
  admin transactions
  admin export --out=transactions.xlsx
  admin token --sub=u-1 --name="Ana Souza" --role=manager
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage + "\n")
		os.Exit(1)
	}

	_ = godotenv.Load()

	command := os.Args[1]

	switch command {
	case "summary-rebuild":
		runSummaryRebuild(os.Args[2:])
	case "overdue-sweep":
		runOverdueSweep(os.Args[2:])
	case "transactions":
		runTransactions(os.Args[2:])
	case "export":
		runExport(os.Args[2:])
	case "token":
		runToken(os.Args[2:])
	case "help", "-h", "--help":
		fmt.Print(usage + "\n")
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		fmt.Print(usage + "\n")
		os.Exit(1)
	}
}

// services is the wiring shared by the data commands.
type services struct {
	cfg          *config.Config
	backend      *backend.Backend
	transactions *transaction.Service
	payments     *payment.Service
	summary      *summary.Service
}

func openServices(ctx context.Context) *services {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	b, err := backend.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open backend: %v", err)
	}

	return &services{
		cfg:          cfg,
		backend:      b,
		transactions: transaction.NewService(b.Transactions, b.Publisher),
		payments:     payment.NewService(b.Payments, b.Publisher),
		summary:      summary.NewService(b.Summary, b.Transactions, b.Payments, b.Publisher, cfg.Finance.BaseCurrency),
	}
}

func parseTimeout(fs *flag.FlagSet, args []string) time.Duration {
	timeoutStr := fs.String("timeout", "5m", "Timeout for the operation (e.g., 30s, 5m)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	timeout, err := time.ParseDuration(*timeoutStr)
	if err != nil {
		log.Fatalf("Invalid timeout format: %v", err)
	}
	return timeout
}

func runSummaryRebuild(args []string) {
	fs := flag.NewFlagSet("summary-rebuild", flag.ExitOnError)
	timeout := parseTimeout(fs, args)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	svc := openServices(ctx)
	defer svc.backend.Close()

	sum, err := svc.summary.Rebuild(ctx)
	if err != nil {
		log.Fatalf("Summary rebuild failed: %v", err)
	}

	fmt.Printf("Summary generated at %s\n", sum.GeneratedAt.Format(time.RFC3339))
	fmt.Printf("  Total receivables:   %s\n", money.Format(sum.TotalReceivables, sum.Currency))
	fmt.Printf("  Total payables:      %s\n", money.Format(sum.TotalPayables, sum.Currency))
	fmt.Printf("  Overdue receivables: %s\n", money.Format(sum.OverdueReceivables, sum.Currency))
	fmt.Printf("  Overdue payables:    %s\n", money.Format(sum.OverduePayables, sum.Currency))
	fmt.Printf("  Cashflow days:       %d\n", len(sum.Cashflow))
}

func runOverdueSweep(args []string) {
	fs := flag.NewFlagSet("overdue-sweep", flag.ExitOnError)
	timeout := parseTimeout(fs, args)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	svc := openServices(ctx)
	defer svc.backend.Close()

	msgs, err := messages.Load(svc.cfg.Finance.MessagesFile)
	if err != nil {
		log.Fatalf("Failed to load messages: %v", err)
	}

	job := scheduler.NewOverdueSweepJob(svc.transactions, svc.backend.Notifier, msgs, svc.cfg.Finance.BaseCurrency)
	if err := job.Execute(ctx); err != nil {
		log.Fatalf("Overdue sweep failed: %v", err)
	}

	fmt.Printf("Marked %d transaction(s) overdue\n", len(job.Swept))
	for _, tx := range job.Swept {
		fmt.Printf("  %s  %-12s due %s  %s\n", tx.ID, tx.ReferenceNumber, tx.DueDate.Format("2006-01-02"), money.Format(tx.Amount, tx.Currency))
	}
}

func runTransactions(args []string) {
	fs := flag.NewFlagSet("transactions", flag.ExitOnError)
	timeout := parseTimeout(fs, args)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	svc := openServices(ctx)
	defer svc.backend.Close()

	store := financial.NewStore(svc.transactions, svc.payments, svc.summary)
	if err := store.FetchTransactions(ctx); err != nil {
		log.Fatalf("Failed to fetch transactions: %v", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tREFERENCE\tTYPE\tSTATUS\tENTITY\tDUE\tAMOUNT")
	for _, tx := range store.State().Transactions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			tx.ID, tx.ReferenceNumber, tx.Type, tx.Status, tx.Entity.Name,
			tx.DueDate.Format("2006-01-02"), money.Format(tx.Amount, tx.Currency))
	}
	w.Flush()
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("out", "", "Output file (default: financial_transactions_<timestamp>.xlsx)")
	timeout := parseTimeout(fs, args)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	svc := openServices(ctx)
	defer svc.backend.Close()

	txs, err := svc.transactions.List(ctx, transaction.ListFilter{})
	if err != nil {
		log.Fatalf("Failed to list transactions: %v", err)
	}
	payments, err := svc.payments.List(ctx, "")
	if err != nil {
		log.Fatalf("Failed to list payments: %v", err)
	}

	path := *out
	if path == "" {
		path = spreadsheet.FileName(time.Now())
	}

	f, err := os.Create(path)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", path, err)
	}
	defer f.Close()

	if err := spreadsheet.Write(f, txs, payments); err != nil {
		log.Fatalf("Failed to write report: %v", err)
	}

	fmt.Printf("Wrote %d transaction(s) and %d payment(s) to %s\n", len(txs), len(payments), path)
}

func runToken(args []string) {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	sub := fs.String("sub", "", "Subject (user ID)")
	name := fs.String("name", "", "Display name")
	email := fs.String("email", "", "Email address")
	role := fs.String("role", "", "Role (defaults to FINANCE_ROLE)")
	ttl := fs.Duration("ttl", 0, "Token lifetime (defaults to AUTH_TOKEN_TTL)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *sub == "" {
		fmt.Println("Error: --sub is required")
		fs.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Auth.Provider != config.AuthProviderJWT {
		log.Fatalf("token requires AUTH_PROVIDER=%s", config.AuthProviderJWT)
	}

	if *role == "" {
		*role = cfg.Finance.Role
	}
	lifetime := cfg.Auth.TokenTTL
	if *ttl > 0 {
		lifetime = *ttl
	}

	token, err := auth.NewJWT(cfg.Auth.JWTSecret, lifetime).Generate(auth.Principal{
		ID:    *sub,
		Name:  *name,
		Email: *email,
		Role:  *role,
	})
	if err != nil {
		log.Fatalf("Failed to generate token: %v", err)
	}

	fmt.Println(token)
}
