// Package tracer wraps OpenTelemetry spans for the issuance path.
package tracer

import (
	"context"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const instrumentationName = "zkid/internal/issuance"

// Span names.
const (
	SpanInitialize     = "issuance.initialize"
	SpanMintCredential = "issuance.mint_credential"
	SpanVerifyProof    = "issuance.verify_proof"
	SpanStoreMint      = "issuance.store_mint"
)

// Attribute keys.
const (
	AttrCaller           = "caller"
	AttrSubject          = "subject"
	AttrVerifierRef      = "verifier.reference"
	AttrStoreRef         = "store.reference"
	AttrTokenID          = "token.id"
	AttrExpiration       = "token.expiration"
	AttrProofFingerprint = "proof.fingerprint"
	AttrAccepted         = "proof.accepted"
)

const EventAuditEmitted = "audit.emitted"

type Attribute = attribute.KeyValue

func String(key, value string) Attribute { return attribute.String(key, value) }
func Bool(key string, value bool) Attribute { return attribute.Bool(key, value) }
func Int64(key string, value int64) Attribute { return attribute.Int64(key, value) }

// Uint64 exports the value as a decimal string; expirations use the full
// range, which does not fit an int64 attribute.
func Uint64(key string, value uint64) Attribute {
	return attribute.String(key, strconv.FormatUint(value, 10))
}

// Tracer starts spans. Implementations are safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Span is ended exactly once; a non-nil error marks it failed.
type Span interface {
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

type otelTracer struct {
	tracer trace.Tracer
}

// New returns a Tracer backed by tp, or by the global provider when tp is nil.
func New(tp trace.TracerProvider) Tracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &otelTracer{tracer: tp.Tracer(instrumentationName)}
}

// Noop returns a Tracer whose spans record nothing.
func Noop() Tracer {
	return New(noop.NewTracerProvider())
}

func (t *otelTracer) Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span) {
	ctx, span := t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, otelSpan{span}
}

type otelSpan struct {
	trace.Span
}

func (s otelSpan) End(err error) {
	if err != nil {
		s.Span.RecordError(err)
		s.Span.SetStatus(codes.Error, err.Error())
	}
	s.Span.End()
}

func (s otelSpan) SetAttributes(attrs ...Attribute) {
	s.Span.SetAttributes(attrs...)
}

func (s otelSpan) AddEvent(name string, attrs ...Attribute) {
	s.Span.AddEvent(name, trace.WithAttributes(attrs...))
}
