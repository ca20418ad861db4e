package riskchallenge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"paygate/kit/errs"
	"paygate/kit/resilience"
	"paygate/kit/tracing"
)

const (
	serviceName    = "riskchallenge"
	requestorName  = "paygate"
	sessionMinutes = 20
)

// Client manages the secondary human/bot-distinguishing challenge. Calls are
// retried on 5xx only: a 4xx is a caller error and cannot succeed on replay.
type Client struct {
	baseURL string
	http    *http.Client
	retry   resilience.RetryPolicy
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		retry:   resilience.DefaultRetryPolicy(),
	}
}

// CreateChallengeSession stores an opaque session blob and returns the
// created session record. The backend applies a 20-minute sliding expiry.
func (c *Client) CreateChallengeSession(ctx context.Context, sessionData string) (*ChallengeSession, error) {
	req := ChallengeSession{
		SessionType:              SessionTypeAddInstrument,
		SessionData:              sessionData,
		SessionLength:            sessionMinutes,
		SessionSlidingExpiration: true,
	}
	var out ChallengeSession
	if err := c.send(ctx, http.MethodPost, "api/v1/challengesession/create", req, &out, nil); err != nil {
		return nil, err
	}
	if out.SessionID == "" {
		return nil, errs.MissingField(serviceName, "sessionId")
	}
	return &out, nil
}

// CreateChallenge requests a renderable challenge descriptor for the session,
// parameterized by risk score and provider. The response body is the
// descriptor JSON and is handed through opaque.
func (c *Client) CreateChallenge(ctx context.Context, sessionID, language string, riskScore int, provider string) (json.RawMessage, error) {
	req := createChallengeRequest{
		SessionID:          sessionID,
		ChallengeRequestor: requestorName,
		RiskScore:          riskScore,
		ChallengeProvider:  provider,
	}
	var out json.RawMessage
	headers := map[string]string{"Accept-Language": language}
	if err := c.send(ctx, http.MethodPost, "api/v1/challenge/create", req, &out, headers); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetChallengeSession(ctx context.Context, sessionID string) (*ChallengeSession, error) {
	var out ChallengeSession
	if err := c.send(ctx, http.MethodGet, "api/v1/challengesession/get/"+sessionID, nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetChallengeStatus(ctx context.Context, sessionID string) (bool, error) {
	var out statusResult
	if err := c.send(ctx, http.MethodGet, "api/v1/challenge/status?sessionId="+sessionID, nil, &out, nil); err != nil {
		return false, err
	}
	return out.Passed, nil
}

// UpdateChallengeSession marks a session Completed or Abandoned, or rewrites
// its blob (e.g. flipping the challengeRequired business flag).
func (c *Client) UpdateChallengeSession(ctx context.Context, req ChallengeSession) (*ChallengeSession, error) {
	var out ChallengeSession
	if err := c.send(ctx, http.MethodPut, "api/v1/challengesession/update", req, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) send(ctx context.Context, method, path string, payload, out any, headers map[string]string) error {
	return c.retry.Do(ctx, func(ctx context.Context) error {
		return c.sendOnce(ctx, method, path, payload, out, headers)
	})
}

func (c *Client) sendOnce(ctx context.Context, method, path string, payload, out any, headers map[string]string) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return errs.Integration(serviceName, "marshal "+path+" payload")
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+path, body)
	if err != nil {
		return errs.Integration(serviceName, "build "+path+" request")
	}

	act := tracing.From(ctx)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Correlation-Id", act.Increment())
	req.Header.Set("Tracking-Id", tracing.TrackingID())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		var ne net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
			return fmt.Errorf("%s %s: %v: %w", serviceName, path, err, errs.ErrTimeout)
		}
		return fmt.Errorf("%s %s: %v: %w", serviceName, path, err, errs.ErrUnavailable)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: %v: %w", serviceName, path, err, errs.ErrUnavailable)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(respBody, out); err != nil {
			return errs.Integration(serviceName, "unmarshal "+path+" response")
		}
		return nil
	}

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%s %s: status %d: %w", serviceName, path, resp.StatusCode, errs.ErrUnavailable)
	}

	var env errorEnvelope
	if err := json.Unmarshal(respBody, &env); err != nil || env.Error.Code == "" {
		return errs.Integration(serviceName, "unmarshal "+path+" error response")
	}
	return &errs.BackendRejection{Service: serviceName, Code: env.Error.Code, Message: env.Error.Message}
}
