package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const maxStatementLen = 256

var (
	dbTracer = otel.Tracer("finmgmt/postgres")
	dbMeter  = otel.Meter("finmgmt/postgres")
)

//go:embed schema.sql
var schema string

// PoolConfig bounds the database/sql connection pool. Zero values keep the
// database/sql defaults.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DB is a *sql.DB whose query methods emit a span and a duration sample
// per statement.
type DB struct {
	*sql.DB
	queryDuration metric.Float64Histogram
}

func New(ctx context.Context, connStr string, pool PoolConfig) (*DB, error) {
	sqlDB, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	hist, err := dbMeter.Float64Histogram(
		"finmgmt.db.statement.duration",
		metric.WithDescription("Time spent executing SQL statements"),
		metric.WithUnit("s"),
	)
	if err != nil {
		log.Printf("Warning: db duration histogram unavailable: %v", err)
	}

	return &DB{DB: sqlDB, queryDuration: hist}, nil
}

// Migrate applies the embedded schema. Every statement is idempotent.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	log.Println("Database schema is up to date")
	return nil
}

// statement is the in-flight instrumentation for one SQL call.
type statement struct {
	span    trace.Span
	verb    string
	started time.Time
	hist    metric.Float64Histogram
}

func (db *DB) begin(ctx context.Context, kind, query string) (context.Context, *statement) {
	verb := extractSQLVerb(query)
	ctx, span := dbTracer.Start(ctx, kind+" "+verb,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", verb),
			attribute.String("db.statement", sanitizeQuery(query)),
		),
	)
	return ctx, &statement{span: span, verb: verb, started: time.Now(), hist: db.queryDuration}
}

func (s *statement) end(ctx context.Context, err error) {
	failed := err != nil && !errors.Is(err, sql.ErrNoRows)
	if failed {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	}
	if s.hist != nil {
		s.hist.Record(ctx, time.Since(s.started).Seconds(), metric.WithAttributes(
			attribute.String("db.operation", s.verb),
			attribute.Bool("error", failed),
		))
	}
	s.span.End()
}

func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	ctx, st := db.begin(ctx, "query", query)
	rows, err := db.DB.QueryContext(ctx, query, args...)
	st.end(ctx, err)
	return rows, err
}

func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx, st := db.begin(ctx, "exec", query)
	res, err := db.DB.ExecContext(ctx, query, args...)
	st.end(ctx, err)
	return res, err
}

// QueryRowContext defers closing the span to Scan, where sql.Row reports
// its error.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *tracedRow {
	ctx, st := db.begin(ctx, "query_row", query)
	return &tracedRow{ctx: ctx, row: db.DB.QueryRowContext(ctx, query, args...), st: st}
}

type tracedRow struct {
	ctx context.Context
	row *sql.Row
	st  *statement
}

func (r *tracedRow) Scan(dest ...any) error {
	err := r.row.Scan(dest...)
	if r.st != nil {
		r.st.end(r.ctx, err)
		r.st = nil
	}
	return err
}

// sanitizeQuery masks string and numeric literals with '?' so values never
// reach a trace. $N placeholders are kept.
func sanitizeQuery(q string) string {
	var b strings.Builder
	b.Grow(len(q))

	for i := 0; i < len(q); {
		switch c := q[i]; {
		case c == '\'':
			b.WriteString("'?'")
			i = skipStringLiteral(q, i+1)
		case isDigit(c) && (i == 0 || !isIdentChar(q[i-1])):
			b.WriteByte('?')
			for i < len(q) && (isDigit(q[i]) || q[i] == '.') {
				i++
			}
		default:
			b.WriteByte(c)
			i++
		}
	}

	out := b.String()
	if len(out) > maxStatementLen {
		out = out[:maxStatementLen] + "..."
	}
	return out
}

// skipStringLiteral returns the index just past the closing quote of the
// literal whose body starts at i. Doubled quotes are escapes.
func skipStringLiteral(q string, i int) int {
	for i < len(q) {
		if q[i] != '\'' {
			i++
			continue
		}
		if i+1 < len(q) && q[i+1] == '\'' {
			i += 2
			continue
		}
		return i + 1
	}
	return i
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// isIdentChar includes '$' so placeholder digits are left alone.
func isIdentChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c == '$' || isDigit(c)
}

func extractSQLVerb(q string) string {
	fields := strings.Fields(q)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}
