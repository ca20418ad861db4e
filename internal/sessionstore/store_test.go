package sessionstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"paygate/internal/payerauth"
	"paygate/internal/session"
	"paygate/kit/errs"
)

func sample() *session.PaymentSession {
	return &session.PaymentSession{
		ID:                  "ps-1",
		AccountID:           "acct-1",
		PaymentInstrumentID: "pi-1",
		Amount:              500,
		Currency:            "EUR",
		Country:             "NL",
		Partner:             "webstore",
		DeviceChannel:       payerauth.DeviceChannelBrowser,
		ChallengeScenario:   payerauth.ScenarioPaymentTransaction,
		ChallengeStatus:     session.StatusUnknown,
		RiskChallengeStatus: session.RiskNone,
		HandlerVersion:      session.HandlerVersion,
	}
}

func TestMemory_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(time.Minute)

	s := sample()
	require.NoError(t, store.Put(ctx, s.ID, s))

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	require.Equal(t, s, got)

	require.NoError(t, store.Delete(ctx, s.ID))
	_, err = store.Get(ctx, s.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(time.Minute)

	s := sample()
	require.NoError(t, store.Put(ctx, s.ID, s))

	first, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	first.ChallengeStatus = session.StatusFailed

	second, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	require.Equal(t, session.StatusUnknown, second.ChallengeStatus)
}

func TestMemory_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(10 * time.Millisecond)

	s := sample()
	require.NoError(t, store.Put(ctx, s.ID, s))
	time.Sleep(20 * time.Millisecond)

	_, err := store.Get(ctx, s.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestBolt_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	store, err := NewBoltFromFile(filepath.Join(t.TempDir(), "sessions.db"), time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	s := sample()
	s.ExposedFlightFeatures = []string{"RiskChallengeMultipage"}
	require.NoError(t, store.Put(ctx, s.ID, s))

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	require.Equal(t, s, got)

	require.NoError(t, store.Delete(ctx, s.ID))
	_, err = store.Get(ctx, s.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestBolt_LastWriteWins(t *testing.T) {
	ctx := context.Background()
	store, err := NewBoltFromFile(filepath.Join(t.TempDir(), "sessions.db"), time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	s := sample()
	require.NoError(t, store.Put(ctx, s.ID, s))

	s.ChallengeStatus = session.StatusPassed
	require.NoError(t, store.Put(ctx, s.ID, s))

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	require.Equal(t, session.StatusPassed, got.ChallengeStatus)
}
