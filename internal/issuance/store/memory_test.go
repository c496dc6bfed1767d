package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zkid/internal/issuance/models"
	"zkid/pkg/platform/sentinel"
)

func TestInMemory(t *testing.T) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, err := NewInMemory().Get(ctx, models.DataKeyAdmin)
		require.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("insert all then read", func(t *testing.T) {
		s := NewInMemory()
		require.NoError(t, s.InsertAll(ctx, map[models.DataKey]string{
			models.DataKeyAdmin:       "admin",
			models.DataKeyVerifierRef: "verifier/schnorr",
			models.DataKeyStoreRef:    "store/primary",
		}))

		v, err := s.Get(ctx, models.DataKeyVerifierRef)
		require.NoError(t, err)
		assert.Equal(t, "verifier/schnorr", v)
	})

	t.Run("partial conflict writes nothing", func(t *testing.T) {
		s := NewInMemory()
		require.NoError(t, s.InsertAll(ctx, map[models.DataKey]string{models.DataKeyAdmin: "first"}))

		err := s.InsertAll(ctx, map[models.DataKey]string{
			models.DataKeyAdmin:    "second",
			models.DataKeyStoreRef: "store/primary",
		})
		require.ErrorIs(t, err, sentinel.ErrAlreadyUsed)

		_, err = s.Get(ctx, models.DataKeyStoreRef)
		require.ErrorIs(t, err, sentinel.ErrNotFound)
		v, err := s.Get(ctx, models.DataKeyAdmin)
		require.NoError(t, err)
		assert.Equal(t, "first", v)
	})

	t.Run("unknown key", func(t *testing.T) {
		err := NewInMemory().InsertAll(ctx, map[models.DataKey]string{"Other": "x"})
		require.ErrorIs(t, err, sentinel.ErrInvalidInput)
	})
}
