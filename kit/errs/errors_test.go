package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSentinelHelpers(t *testing.T) {
	var tests = []struct {
		name    string
		err     error
		matches func(error) bool
	}{
		{name: "integration", err: Integration("payerauth", "bad payload"), matches: IsIntegration},
		{name: "missing field", err: MissingField("payerauth", "acsUrl"), matches: IsMissingProtocolField},
		{name: "unavailable wrapped", err: fmt.Errorf("call failed: %w", ErrUnavailable), matches: IsUnavailable},
		{name: "timeout wrapped", err: fmt.Errorf("call failed: %w", ErrTimeout), matches: IsTimeout},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			require.True(t, tt.matches(tt.err))
		})
	}
}

func TestTransient(t *testing.T) {
	require.True(t, Transient(fmt.Errorf("x: %w", ErrUnavailable)))
	require.True(t, Transient(fmt.Errorf("x: %w", ErrTimeout)))
	require.False(t, Transient(MissingField("payerauth", "acsUrl")))
	require.False(t, Transient(&BackendRejection{Service: "risk", Code: "InvalidSession"}))
}

func TestAsBackendRejection(t *testing.T) {
	rej := &BackendRejection{Service: "risk", Code: "InvalidSession", Message: "session expired"}
	wrapped := fmt.Errorf("create challenge: %w", rej)

	got, ok := AsBackendRejection(wrapped)
	require.True(t, ok)
	require.Equal(t, "InvalidSession", got.Code)

	_, ok = AsBackendRejection(errors.New("plain"))
	require.False(t, ok)
}
