package sessionsvc

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/alama/core"
)

func fixNow(t *testing.T, now time.Time) *time.Time {
	curr := now
	NowFunc = func() time.Time { return curr }
	t.Cleanup(func() { NowFunc = time.Now })
	return &curr
}

func TestCaptchaService(t *testing.T) {
	ctx := context.Background()
	now := fixNow(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))

	randIntn = func(n int) int { return 2 } // a = b = 3
	t.Cleanup(func() { randIntn = defaultRandIntn })

	svc := NewCaptchaService(NewMemoryStore(), 5*time.Minute, true)

	t.Run("question", func(t *testing.T) {
		ch, err := svc.New(ctx)
		require.NoError(t, err)
		assert.Equal(t, "3 + 3 = ?", ch.Question)
		assert.NotEmpty(t, ch.ID)
	})

	t.Run("missing answer", func(t *testing.T) {
		ch, _ := svc.New(ctx)
		err := svc.Verify(ctx, ch.ID, " ")
		var vErr *core.ValidationError
		assert.True(t, errors.As(err, &vErr))
	})

	t.Run("wrong answer", func(t *testing.T) {
		ch, _ := svc.New(ctx)
		assert.True(t, errors.Is(svc.Verify(ctx, ch.ID, "7"), core.ErrForbidden))
	})

	t.Run("single use", func(t *testing.T) {
		ch, _ := svc.New(ctx)
		assert.NoError(t, svc.Verify(ctx, ch.ID, "6"))
		assert.True(t, errors.Is(svc.Verify(ctx, ch.ID, "6"), core.ErrForbidden))
	})

	t.Run("expired", func(t *testing.T) {
		ch, _ := svc.New(ctx)
		*now = now.Add(5 * time.Minute)
		assert.True(t, errors.Is(svc.Verify(ctx, ch.ID, "6"), core.ErrForbidden))
	})

	t.Run("disabled", func(t *testing.T) {
		off := NewCaptchaService(NewMemoryStore(), time.Minute, false)
		assert.False(t, off.Enabled())
		assert.NoError(t, off.Verify(ctx, "", ""))
	})
}

func TestMemoryStore_Revoke(t *testing.T) {
	ctx := context.Background()
	now := fixNow(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	store := NewMemoryStore()

	require.NoError(t, store.Revoke(ctx, "jti-1", now.Add(time.Hour)))
	require.NoError(t, store.Revoke(ctx, "jti-2", now.Add(-time.Hour))) // already expired

	revoked, _ := store.IsRevoked(ctx, "jti-1")
	assert.True(t, revoked)
	revoked, _ = store.IsRevoked(ctx, "jti-2")
	assert.False(t, revoked)
	revoked, _ = store.IsRevoked(ctx, "unknown")
	assert.False(t, revoked)

	*now = now.Add(time.Hour)
	revoked, _ = store.IsRevoked(ctx, "jti-1")
	assert.False(t, revoked)
}
