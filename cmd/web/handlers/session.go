package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"paygate/cmd/web/validator"
	"paygate/internal/challenge"
	"paygate/internal/descriptor"
	"paygate/internal/payerauth"
	"paygate/internal/session"
	"paygate/kit/errs"
)

// SessionOrchestratorContract define the orchestration surface this handler
// consumes.
type SessionOrchestratorContract interface {
	CreatePaymentSession(ctx context.Context, req challenge.CreateRequest) (*challenge.CreateResult, error)
	ResolveMethodURL(ctx context.Context, sessionID string, info *payerauth.BrowserInfo) (*payerauth.MethodData, error)
	Authenticate(ctx context.Context, sessionID string) (*challenge.FlowResult, error)
	CompleteChallenge(ctx context.Context, sessionID string) (*challenge.FlowResult, error)
	AttachRiskChallenge(ctx context.Context, sessionID string, resources []*descriptor.Resource) ([]*descriptor.Resource, error)
	Status(ctx context.Context, sessionID string) (*challenge.StatusResult, error)
	TryGetSession(ctx context.Context, sessionID string) (*session.PaymentSession, error)
}

type Session struct {
	json *validator.JSON
	orch SessionOrchestratorContract
}

func NewSession(jsonV *validator.JSON, orch SessionOrchestratorContract) *Session {
	return &Session{json: jsonV, orch: orch}
}

func (h *Session) Create(w http.ResponseWriter, r *http.Request) {
	var req challenge.CreateRequest
	if err := h.json.Decode(w, r, &req); err != nil {
		log.Printf("layer=handler component=session method=Create err=%v", err)
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	res, err := h.orch.CreatePaymentSession(r.Context(), req)
	if err != nil {
		h.writeFlowError(w, "Create", "", err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	h.encode(w, "Create", res)
}

func (h *Session) ResolveMethodURL(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	var info payerauth.BrowserInfo
	if err := h.json.Decode(w, r, &info); err != nil {
		log.Printf("layer=handler component=session method=ResolveMethodURL session_id=%s err=%v", sessionID, err)
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	method, err := h.orch.ResolveMethodURL(r.Context(), sessionID, &info)
	if err != nil {
		h.writeFlowError(w, "ResolveMethodURL", sessionID, err)
		return
	}
	h.encode(w, "ResolveMethodURL", method)
}

func (h *Session) Authenticate(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	res, err := h.orch.Authenticate(r.Context(), sessionID)
	if err != nil {
		h.writeFlowError(w, "Authenticate", sessionID, err)
		return
	}
	h.encode(w, "Authenticate", res)
}

// NotifyChallengeCompleted is where the authentication backend lands the
// cardholder's browser after the out-of-band challenge. It finalizes the
// session and bounces the browser to the storefront's return URL. Retryable
// outcomes answer JSON: they are not failures and must not be presented to
// the storefront as one.
func (h *Session) NotifyChallengeCompleted(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	res, err := h.orch.CompleteChallenge(r.Context(), sessionID)
	if err != nil {
		h.writeFlowError(w, "NotifyChallengeCompleted", sessionID, err)
		return
	}

	if res.ChallengeStatus.Terminal() {
		s, err := h.orch.TryGetSession(r.Context(), sessionID)
		if err == nil && s != nil {
			target := s.FailureURL
			if res.ChallengeStatus == session.StatusPassed {
				target = s.SuccessURL
			}
			if target != "" {
				http.Redirect(w, r, target, http.StatusSeeOther)
				return
			}
		}
	}
	h.encode(w, "NotifyChallengeCompleted", res)
}

func (h *Session) AttachRiskChallenge(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	var resources []*descriptor.Resource
	if err := h.json.Decode(w, r, &resources); err != nil {
		log.Printf("layer=handler component=session method=AttachRiskChallenge session_id=%s err=%v", sessionID, err)
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	out, err := h.orch.AttachRiskChallenge(r.Context(), sessionID, resources)
	if err != nil {
		h.writeFlowError(w, "AttachRiskChallenge", sessionID, err)
		return
	}
	h.encode(w, "AttachRiskChallenge", out)
}

func (h *Session) Status(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	res, err := h.orch.Status(r.Context(), sessionID)
	if err != nil {
		h.writeFlowError(w, "Status", sessionID, err)
		return
	}
	h.encode(w, "Status", res)
}

// writeFlowError maps orchestration errors to the caller-facing surface:
// backend rejections and exhausted retries are authentication outcomes the
// storefront can act on, protocol breaks are hard gateway failures.
func (h *Session) writeFlowError(w http.ResponseWriter, method, sessionID string, err error) {
	log.Printf("layer=handler component=session method=%s session_id=%s err=%v", method, sessionID, err)

	if rejection, ok := errs.AsBackendRejection(err); ok {
		h.encode(w, method, map[string]any{
			"sessionId": sessionID,
			"outcome":   "declined",
			"code":      rejection.Code,
			"message":   rejection.Message,
		})
		return
	}
	if errs.IsUnavailable(err) || errs.IsTimeout(err) {
		h.encode(w, method, map[string]any{
			"sessionId": sessionID,
			"outcome":   "unavailable",
			"retryable": true,
		})
		return
	}

	switch {
	case errs.IsMissingProtocolField(err) || errs.IsIntegration(err):
		http.Error(w, "upstream protocol failure", http.StatusBadGateway)
	case errs.IsInvalid(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errs.IsNotFound(err):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (h *Session) encode(w http.ResponseWriter, method string, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("layer=handler component=session method=%s err=%v", method, err)
	}
}
