package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const maxStatementLen = 256

var _ pgx.QueryTracer = queryTracer{}

// queryTracer abre un span por sentencia SQL. Sin TracerProvider configurado los spans son no-op.
type queryTracer struct {
	tracer trace.Tracer
}

func newQueryTracer() queryTracer {
	return queryTracer{tracer: otel.Tracer("github.com/jhoicas/purchases-api/internal/infrastructure/postgres")}
}

func (t queryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	stmt := compactSQL(data.SQL)
	ctx, _ = t.tracer.Start(ctx, spanName(stmt),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.statement", stmt),
		),
	)
	return ctx
}

func (t queryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	span := trace.SpanFromContext(ctx)
	if data.Err != nil {
		span.RecordError(data.Err)
		span.SetStatus(codes.Error, data.Err.Error())
	} else {
		span.SetAttributes(attribute.Int64("db.rows_affected", data.CommandTag.RowsAffected()))
	}
	span.End()
}

// compactSQL colapsa espacios y recorta la sentencia; los argumentos nunca se registran.
func compactSQL(sql string) string {
	s := strings.Join(strings.Fields(sql), " ")
	if len(s) > maxStatementLen {
		s = s[:maxStatementLen]
	}
	return s
}

// spanName usa el verbo SQL: "db SELECT", "db UPDATE"...
func spanName(stmt string) string {
	verb, _, _ := strings.Cut(stmt, " ")
	if verb == "" {
		return "db"
	}
	return "db " + strings.ToUpper(verb)
}
