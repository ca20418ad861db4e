package payerauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"paygate/kit/errs"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "v3", srv.Client())
}

func browserAuthRequest() AuthenticationRequest {
	return AuthenticationRequest{
		PaymentSession: SessionContext{
			ID:            "ps-1",
			DeviceChannel: DeviceChannelBrowser,
		},
		ServerTransactionID: "trans-1",
	}
}

func TestClient_CreateSession(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/CreatePaymentSession", r.URL.Path)
		require.Equal(t, "v3", r.Header.Get("Api-Version"))
		require.NotEmpty(t, r.Header.Get("Tracking-Id"))
		require.NotEmpty(t, r.Header.Get("Correlation-Id"))
		_ = json.NewEncoder(w).Encode(map[string]string{"paymentSessionId": "ps-42"})
	})

	id, err := c.CreateSession(context.Background(), SessionContext{AccountID: "a1"})
	require.NoError(t, err)
	require.Equal(t, "ps-42", id)
}

func TestClient_CreateSession_EmptyIDIsProtocolBreak(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{})
	})

	_, err := c.CreateSession(context.Background(), SessionContext{})
	require.ErrorIs(t, err, errs.ErrMissingProtocolField)
}

func TestClient_GetMethodURL_RequiresServerTransactionID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"methodUrl": "https://acs.example/method"})
	})

	_, err := c.GetMethodURL(context.Background(), SessionContext{})
	require.ErrorIs(t, err, errs.ErrMissingProtocolField)
}

func TestClient_Authenticate_Invariants(t *testing.T) {
	var tests = []struct {
		name        string
		req         AuthenticationRequest
		resp        AuthenticationResponse
		expectedErr error
	}{
		{
			name: "browser enrolled without acsUrl",
			req:  browserAuthRequest(),
			resp: AuthenticationResponse{
				EnrollmentStatus: Enrolled,
				AcsTransactionID: "acs-1",
			},
			expectedErr: errs.ErrMissingProtocolField,
		},
		{
			name: "app enrolled without signed content",
			req: AuthenticationRequest{
				PaymentSession: SessionContext{DeviceChannel: DeviceChannelAppBased},
			},
			resp: AuthenticationResponse{
				EnrollmentStatus: Enrolled,
				AcsTransactionID: "acs-1",
			},
			expectedErr: errs.ErrMissingProtocolField,
		},
		{
			name: "missing enrollment status",
			req:  browserAuthRequest(),
			resp: AuthenticationResponse{
				AcsTransactionID: "acs-1",
			},
			expectedErr: errs.ErrMissingProtocolField,
		},
		{
			name: "missing acs transaction id",
			req:  browserAuthRequest(),
			resp: AuthenticationResponse{
				EnrollmentStatus: NotEnrolled,
			},
			expectedErr: errs.ErrMissingProtocolField,
		},
		{
			name: "bypassed relaxes transaction id",
			req:  browserAuthRequest(),
			resp: AuthenticationResponse{
				EnrollmentStatus: Bypassed,
			},
		},
		{
			name: "browser enrolled with acsUrl",
			req:  browserAuthRequest(),
			resp: AuthenticationResponse{
				EnrollmentStatus: Enrolled,
				AcsTransactionID: "acs-1",
				AcsURL:           "https://acs.example/challenge",
			},
		},
		{
			name: "app enrolled with signed content",
			req: AuthenticationRequest{
				PaymentSession: SessionContext{DeviceChannel: DeviceChannelAppBased},
			},
			resp: AuthenticationResponse{
				EnrollmentStatus:    Enrolled,
				AcsTransactionID:    "acs-1",
				AcsSignedContent:    "ey.signed.content",
				ServerTransactionID: "trans-1",
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(tt.resp)
			})
			got, err := c.Authenticate(context.Background(), tt.req)
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.resp.EnrollmentStatus, got.EnrollmentStatus)
		})
	}
}

func TestClient_Authenticate_DeviceChannelRequired(t *testing.T) {
	c := NewClient("http://unused", "v3", nil)
	_, err := c.Authenticate(context.Background(), AuthenticationRequest{})
	require.ErrorIs(t, err, errs.ErrInvalid)
}

func TestClient_CompleteChallenge_EmptyStatusIsProtocolBreak(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{})
	})

	_, err := c.CompleteChallenge(context.Background(), CompletionRequest{})
	require.ErrorIs(t, err, errs.ErrMissingProtocolField)
}

func TestClient_ErrorMapping(t *testing.T) {
	var tests = []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "5xx is unavailable",
			status: http.StatusBadGateway,
			body:   "upstream down",
			check: func(t *testing.T, err error) {
				require.ErrorIs(t, err, errs.ErrUnavailable)
			},
		},
		{
			name:   "structured 4xx is rejection",
			status: http.StatusBadRequest,
			body:   `{"errorCode":"InvalidPaymentSession","message":"bad session"}`,
			check: func(t *testing.T, err error) {
				rej, ok := errs.AsBackendRejection(err)
				require.True(t, ok)
				require.Equal(t, "InvalidPaymentSession", rej.Code)
				require.Equal(t, "bad session", rej.Message)
			},
		},
		{
			name:   "unparseable 4xx is integration failure",
			status: http.StatusBadRequest,
			body:   "not json",
			check: func(t *testing.T, err error) {
				require.ErrorIs(t, err, errs.ErrIntegration)
			},
		},
		{
			name:   "unparseable 2xx is integration failure",
			status: http.StatusOK,
			body:   "not json",
			check: func(t *testing.T, err error) {
				require.ErrorIs(t, err, errs.ErrIntegration)
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.CompleteChallenge(context.Background(), CompletionRequest{})
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}
