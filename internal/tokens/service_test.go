package tokens

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"taskfyer/internal/apperr"
	model "taskfyer/internal/domain/tokens"
	"taskfyer/internal/testutil"

	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*Service, *GormStore, *testutil.Clock) {
	t.Helper()
	store := NewGormStore(testutil.NewDB(t))
	clock := testutil.NewClock(t0)
	return NewService(store, WithClock(clock.Now)), store, clock
}

func TestIssue_ThenValidate(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()

	raw, err := svc.Issue(ctx, 7, model.PurposeVerifyEmail)
	require.NoError(t, err)
	require.Len(t, raw, 2*secretBytes)

	userID, err := svc.Validate(ctx, raw, model.PurposeVerifyEmail)
	require.NoError(t, err)
	require.Equal(t, uint(7), userID)

	n, err := store.Count(ctx, 7, model.PurposeVerifyEmail)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}

func TestIssue_StoresOnlyTheHash(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()

	raw, err := svc.Issue(ctx, 1, model.PurposeResetPassword)
	require.NoError(t, err)

	_, err = store.FindByHash(ctx, raw, model.PurposeResetPassword)
	require.ErrorIs(t, err, ErrNotFound)

	tok, err := store.FindByHash(ctx, svc.hash(raw), model.PurposeResetPassword)
	require.NoError(t, err)
	require.NotEqual(t, raw, tok.SecretHash)
	require.Equal(t, t0.Add(time.Hour), tok.ExpiresAt.UTC())
}

func TestIssue_SupersedesPreviousToken(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()

	first, err := svc.Issue(ctx, 3, model.PurposeVerifyEmail)
	require.NoError(t, err)
	second, err := svc.Issue(ctx, 3, model.PurposeVerifyEmail)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	_, err = svc.Validate(ctx, first, model.PurposeVerifyEmail)
	require.ErrorIs(t, err, apperr.ErrTokenNotFound)

	userID, err := svc.Validate(ctx, second, model.PurposeVerifyEmail)
	require.NoError(t, err)
	require.Equal(t, uint(3), userID)

	n, err := store.Count(ctx, 3, model.PurposeVerifyEmail)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}

func TestIssue_PurposesAreIndependent(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	verify, err := svc.Issue(ctx, 3, model.PurposeVerifyEmail)
	require.NoError(t, err)
	_, err = svc.Issue(ctx, 3, model.PurposeResetPassword)
	require.NoError(t, err)

	_, err = svc.Validate(ctx, verify, model.PurposeVerifyEmail)
	require.NoError(t, err)

	_, err = svc.Validate(ctx, verify, model.PurposeResetPassword)
	require.ErrorIs(t, err, apperr.ErrTokenNotFound)
}

func TestValidate_Expiry(t *testing.T) {
	svc, _, clock := newService(t)
	ctx := context.Background()

	raw, err := svc.Issue(ctx, 5, model.PurposeVerifyEmail)
	require.NoError(t, err)

	clock.Set(t0.Add(23*time.Hour + 59*time.Minute))
	_, err = svc.Validate(ctx, raw, model.PurposeVerifyEmail)
	require.NoError(t, err)

	clock.Set(t0.Add(24*time.Hour + time.Minute))
	_, err = svc.Validate(ctx, raw, model.PurposeVerifyEmail)
	require.ErrorIs(t, err, apperr.ErrTokenNotFound)
}

func TestValidate_ResetExpiresAfterAnHour(t *testing.T) {
	svc, _, clock := newService(t)
	ctx := context.Background()

	raw, err := svc.Issue(ctx, 5, model.PurposeResetPassword)
	require.NoError(t, err)

	clock.Advance(time.Hour)
	_, err = svc.Validate(ctx, raw, model.PurposeResetPassword)
	require.ErrorIs(t, err, apperr.ErrTokenNotFound)
}

func TestValidate_TamperedSecret(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	raw, err := svc.Issue(ctx, 9, model.PurposeResetPassword)
	require.NoError(t, err)

	b := []byte(raw)
	if b[0] == 'a' {
		b[0] = 'b'
	} else {
		b[0] = 'a'
	}
	_, err = svc.Validate(ctx, string(b), model.PurposeResetPassword)
	require.ErrorIs(t, err, apperr.ErrTokenNotFound)

	_, err = svc.Validate(ctx, "", model.PurposeResetPassword)
	require.ErrorIs(t, err, apperr.ErrTokenNotFound)
}

func TestValidate_DoesNotConsume(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	raw, err := svc.Issue(ctx, 2, model.PurposeVerifyEmail)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = svc.Validate(ctx, raw, model.PurposeVerifyEmail)
		require.NoError(t, err)
	}

	require.NoError(t, svc.Consume(ctx, raw, model.PurposeVerifyEmail))
	_, err = svc.Validate(ctx, raw, model.PurposeVerifyEmail)
	require.ErrorIs(t, err, apperr.ErrTokenNotFound)

	require.NoError(t, svc.Consume(ctx, raw, model.PurposeVerifyEmail), "second consume is a no-op")
}

func TestIssue_InvalidPurposeNeverReachesStore(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Issue(ctx, 1, model.Purpose("magic-link"))
	require.Equal(t, apperr.KindInternal, apperr.KindOf(err))

	n, err := store.Count(ctx, 1, model.Purpose("magic-link"))
	require.NoError(t, err)
	require.Zero(t, n)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestIssue_RandomFailure(t *testing.T) {
	store := NewGormStore(testutil.NewDB(t))
	svc := NewService(store, WithRandom(failingReader{}))

	_, err := svc.Issue(context.Background(), 1, model.PurposeVerifyEmail)
	require.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

func TestIssue_ConcurrentLeavesOneRow(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()

	const n = 8
	raws := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			raw, err := svc.Issue(ctx, 11, model.PurposeResetPassword)
			if err == nil {
				raws[i] = raw
			}
		}(i)
	}
	wg.Wait()

	count, err := store.Count(ctx, 11, model.PurposeResetPassword)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	live := 0
	for _, raw := range raws {
		if raw == "" {
			continue
		}
		if _, err := svc.Validate(ctx, raw, model.PurposeResetPassword); err == nil {
			live++
		}
	}
	require.Equal(t, 1, live)
}

func TestRevoke(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Issue(ctx, 4, model.PurposeVerifyEmail)
	require.NoError(t, err)
	_, err = svc.Issue(ctx, 4, model.PurposeResetPassword)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, 4))

	for _, p := range []model.Purpose{model.PurposeVerifyEmail, model.PurposeResetPassword} {
		n, err := store.Count(ctx, 4, p)
		require.NoError(t, err)
		require.Zero(t, n)
	}
}
