package database

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/statmill/weekcast/internal/telemetry"
)

// maxTracedStatementLen caps the db.statement attribute so batched inserts do
// not bloat exported spans.
const maxTracedStatementLen = 512

// TracedPool decorates a DatabasePool with OpenTelemetry client spans. One
// span is recorded per statement, named after the leading SQL keyword. With
// tracing disabled the global no-op provider makes the wrapper free.
type TracedPool struct {
	pool   DatabasePool
	tracer trace.Tracer
}

// NewTracedPool wraps pool so every statement issued through it is traced.
//
// Parameters:
//
//	pool: The pool to decorate.
//
// Returns:
//
//	*TracedPool: The tracing decorator, itself a DatabasePool.
func NewTracedPool(pool DatabasePool) *TracedPool {
	return &TracedPool{
		pool:   pool,
		tracer: telemetry.Tracer("weekcast/database"),
	}
}

func (p *TracedPool) start(ctx context.Context, sql string) (context.Context, trace.Span) {
	return p.tracer.Start(ctx, "db."+statementOperation(sql),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.statement", truncateStatement(sql)),
		),
	)
}

// Query executes a query that returns rows, recording a span around the
// dispatch of the statement.
func (p *TracedPool) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	ctx, span := p.start(ctx, sql)
	defer span.End()

	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return rows, err
}

// QueryRow executes a query expected to return at most one row. pgx defers
// errors to Scan, so the span carries only the statement.
func (p *TracedPool) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	ctx, span := p.start(ctx, sql)
	defer span.End()

	return p.pool.QueryRow(ctx, sql, args...)
}

// Exec executes a statement without returning rows, recording the affected
// row count on the span.
func (p *TracedPool) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	ctx, span := p.start(ctx, sql)
	defer span.End()

	tag, err := p.pool.Exec(ctx, sql, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return tag, err
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", tag.RowsAffected()))
	return tag, nil
}

// statementOperation extracts the leading SQL keyword, lowercased, for use in
// the span name.
func statementOperation(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "statement"
	}
	return strings.ToLower(fields[0])
}

func truncateStatement(sql string) string {
	if len(sql) <= maxTracedStatementLen {
		return sql
	}
	return sql[:maxTracedStatementLen]
}
