package tracer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"zkid/pkg/platform/tracer"
)

func TestUint64KeepsFullRange(t *testing.T) {
	kv := tracer.Uint64(tracer.AttrExpiration, ^uint64(0))
	assert.Equal(t, "18446744073709551615", kv.Value.Emit())
}

func TestAttributes(t *testing.T) {
	assert.Equal(t, "alice", tracer.String(tracer.AttrSubject, "alice").Value.AsString())
	assert.True(t, tracer.Bool(tracer.AttrAccepted, true).Value.AsBool())
	assert.Equal(t, int64(3), tracer.Int64("count", 3).Value.AsInt64())
}

func TestNoopSpansDoNotRecord(t *testing.T) {
	ctx, span := tracer.Noop().Start(context.Background(), tracer.SpanMintCredential,
		tracer.String(tracer.AttrSubject, "alice"),
	)
	require.NotNil(t, span)
	assert.False(t, trace.SpanFromContext(ctx).IsRecording())

	span.SetAttributes(tracer.String(tracer.AttrTokenID, "0"))
	span.AddEvent(tracer.EventAuditEmitted)
	span.End(errors.New("verification failed"))
}

func TestNewUsesGlobalProviderWhenNil(t *testing.T) {
	ctx, span := tracer.New(nil).Start(context.Background(), tracer.SpanInitialize)
	require.NotNil(t, ctx)
	span.End(nil)
}
