package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	id "zkid/pkg/domain"
)

func TestNowFallsBackToWallClock(t *testing.T) {
	before := time.Now()
	got := Now(context.Background())
	assert.False(t, got.Before(before))
}

func TestWithTimeOverrides(t *testing.T) {
	first := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	second := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	ctx := WithTime(context.Background(), first)
	ctx = WithTime(ctx, second)

	assert.Equal(t, second, Now(ctx))
}

func TestPrincipalAndRequestID(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, id.Principal(""), Principal(ctx))
	assert.Empty(t, RequestID(ctx))

	ctx = WithPrincipal(WithRequestID(ctx, "req-1"), "admin")
	assert.Equal(t, id.Principal("admin"), Principal(ctx))
	assert.Equal(t, "req-1", RequestID(ctx))
}
