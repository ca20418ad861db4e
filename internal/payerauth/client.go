package payerauth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strings"

	"paygate/kit/errs"
	"paygate/kit/tracing"
)

const serviceName = "payerauth"

const (
	headerAPIVersion    = "Api-Version"
	headerCorrelationID = "Correlation-Id"
	headerTrackingID    = "Tracking-Id"
	headerRequestID     = "Request-Id"
)

// Client talks to the card-authentication protocol backend. It is stateless:
// every call carries the full context it needs. Calls are NOT retried here;
// authentication calls are not safely idempotent without the backend checking
// the tracking id, so retry policy belongs to the orchestrator.
type Client struct {
	baseURL    string
	apiVersion string
	http       *http.Client
}

func NewClient(baseURL, apiVersion string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), apiVersion: apiVersion, http: httpClient}
}

// CreateSession posts business+instrument context and returns the opaque
// protocol-side session id.
func (c *Client) CreateSession(ctx context.Context, sc SessionContext) (string, error) {
	var resp sessionResponse
	if err := c.send(ctx, "CreatePaymentSession", sessionRequest{PaymentSession: sc}, &resp); err != nil {
		return "", err
	}
	if resp.PaymentSessionID == "" {
		return "", errs.MissingField(serviceName, "paymentSessionId")
	}
	return resp.PaymentSessionID, nil
}

// GetMethodURL requests the device-fingerprinting method URL. The server
// transaction id in the response is required by the authenticate step; its
// absence is a contract break, not a retryable condition.
func (c *Client) GetMethodURL(ctx context.Context, sc SessionContext) (*MethodData, error) {
	var md MethodData
	if err := c.send(ctx, "GetMethodURL", methodRequest{PaymentSession: sc}, &md); err != nil {
		return nil, err
	}
	if md.ServerTransactionID == "" {
		return nil, errs.MissingField(serviceName, "serverTransactionId")
	}
	return &md, nil
}

// Authenticate performs the enrollment lookup and, when no challenge is
// needed, the authentication itself. On success the enrollment status is
// always populated and the channel-specific field invariants hold:
//
//   - browser channel + enrolled requires acsUrl
//   - app channel + enrolled requires acsSignedContent and a transaction id
//
// Violations indicate a broken backend contract and surface as hard failures.
func (c *Client) Authenticate(ctx context.Context, req AuthenticationRequest) (*AuthenticationResponse, error) {
	if req.PaymentSession.DeviceChannel == "" {
		return nil, fmt.Errorf("payerauth: device channel not set: %w", errs.ErrInvalid)
	}

	var ares AuthenticationResponse
	if err := c.send(ctx, "Authenticate", req, &ares); err != nil {
		return nil, err
	}

	if ares.EnrollmentStatus == "" {
		return nil, errs.MissingField(serviceName, "enrollmentStatus")
	}
	if ares.EnrollmentStatus != Bypassed && ares.AcsTransactionID == "" {
		return nil, errs.MissingField(serviceName, "acsTransactionId")
	}
	if ares.EnrollmentStatus == Enrolled && req.PaymentSession.DeviceChannel == DeviceChannelBrowser && ares.AcsURL == "" {
		return nil, errs.MissingField(serviceName, "acsUrl in browser flow")
	}
	if ares.EnrollmentStatus == Enrolled && req.PaymentSession.DeviceChannel == DeviceChannelAppBased &&
		(ares.AcsSignedContent == "" || ares.ServerTransactionID == "") {
		return nil, errs.MissingField(serviceName, "acsSignedContent in app flow")
	}

	return &ares, nil
}

// CompleteChallenge fetches the terminal protocol codes after the out-of-band
// challenge finished or was abandoned. The backend must always answer, even
// with a failure status; an empty response is a contract break.
func (c *Client) CompleteChallenge(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	var cres CompletionResponse
	if err := c.send(ctx, "CompleteChallenge", req, &cres); err != nil {
		return nil, err
	}
	if cres.TransactionStatus == "" {
		return nil, errs.MissingField(serviceName, "completion transactionStatus")
	}
	return &cres, nil
}

func (c *Client) send(ctx context.Context, action string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errs.Integration(serviceName, "marshal "+action+" payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+action, bytes.NewReader(body))
	if err != nil {
		return errs.Integration(serviceName, "build "+action+" request")
	}

	act := tracing.From(ctx)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerAPIVersion, c.apiVersion)
	req.Header.Set(headerCorrelationID, act.Increment())
	req.Header.Set(headerTrackingID, tracing.TrackingID())
	req.Header.Set(headerRequestID, tracing.TrackingID())

	resp, err := c.http.Do(req)
	if err != nil {
		return transportError(action, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(action, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if len(respBody) == 0 {
			return errs.Integration(serviceName, action+" returned empty body")
		}
		if err := json.Unmarshal(respBody, out); err != nil {
			log.Printf("layer=client component=payerauth method=%s status=%d err=%v", action, resp.StatusCode, err)
			return errs.Integration(serviceName, "unmarshal "+action+" response")
		}
		return nil
	}

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%s %s: status %d: %w", serviceName, action, resp.StatusCode, errs.ErrUnavailable)
	}

	var er errorResponse
	if err := json.Unmarshal(respBody, &er); err != nil || er.ErrorCode == "" {
		return errs.Integration(serviceName, "unmarshal "+action+" error response")
	}
	return &errs.BackendRejection{Service: serviceName, Code: er.ErrorCode, Message: er.Message}
}

func transportError(action string, err error) error {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return fmt.Errorf("%s %s: %v: %w", serviceName, action, err, errs.ErrTimeout)
	}
	return fmt.Errorf("%s %s: %v: %w", serviceName, action, err, errs.ErrUnavailable)
}
