package challenge

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"paygate/internal/events"
	"paygate/internal/partnercfg"
	"paygate/internal/payerauth"
	"paygate/internal/riskchallenge"
	"paygate/internal/session"
	"paygate/kit/broker"
	"paygate/kit/errs"
	"paygate/kit/observability"
	"paygate/kit/resilience"
)

// Config carries the orchestrator's protocol parameters.
type Config struct {
	// ChallengeNotificationURL is this gateway's callback the authentication
	// backend redirects the cardholder to after the out-of-band challenge.
	ChallengeNotificationURL string
	MessageVersion           string
}

// Orchestrator drives a payment session through enrollment, authentication
// and challenge completion. All collaborators are injected; the session store
// is the only state that outlives a call.
type Orchestrator struct {
	cfg         Config
	auth        AuthProtocolContract
	risk        RiskChallengeContract
	store       SessionStoreContract
	partners    PartnerConfigContract
	instruments InstrumentResolverContract
	bus         PublisherContract
	metrics     *observability.Metrics

	retry   resilience.RetryPolicy
	breaker *resilience.Breaker
}

func NewOrchestrator(
	cfg Config,
	auth AuthProtocolContract,
	risk RiskChallengeContract,
	store SessionStoreContract,
	partners PartnerConfigContract,
	instruments InstrumentResolverContract,
	bus PublisherContract,
	metrics *observability.Metrics,
) *Orchestrator {
	if cfg.MessageVersion == "" {
		cfg.MessageVersion = "2.2.0"
	}
	return &Orchestrator{
		cfg:         cfg,
		auth:        auth,
		risk:        risk,
		store:       store,
		partners:    partners,
		instruments: instruments,
		bus:         bus,
		metrics:     metrics,
		retry:       resilience.DefaultRetryPolicy(),
		breaker:     resilience.NewBreaker(resilience.BreakerConfig{}),
	}
}

// CreatePaymentSession opens a session for an instrument and decides whether
// a step-up challenge is needed at all. Sessions that need no challenge are
// terminal immediately, with no protocol calls.
func (o *Orchestrator) CreatePaymentSession(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	if err := validateCreateRequest(req); err != nil {
		log.Printf("layer=service component=challenge method=CreatePaymentSession account_id=%s err=%v", req.AccountID, err)
		return nil, errors.Join(errs.ErrInvalid, err)
	}

	instrument, err := o.instruments.Resolve(ctx, req.AccountID, req.PaymentInstrumentID)
	if err != nil {
		log.Printf("layer=service component=challenge method=CreatePaymentSession account_id=%s instrument_id=%s err=%v", req.AccountID, req.PaymentInstrumentID, err)
		return nil, err
	}

	s := newSession(req, instrument)

	settings, err := o.partnerSettings(ctx, s)
	if err != nil {
		log.Printf("layer=service component=challenge method=CreatePaymentSession partner=%s err=%v", s.Partner, err)
		return nil, err
	}

	switch {
	case !settings.StepUpEnabled || !instrument.RequiresAuthentication:
		// No challenge applies; terminal without touching the protocol.
		s.ID = uuid.NewString()
		s.ChallengeStatus = session.StatusPassed

	case s.IsMOTO:
		// Phone/mail orders bypass the cardholder challenge; the protocol
		// backend is still notified so the issuer sees the attempt.
		o.bypassMOTO(ctx, s)

	default:
		var protocolID string
		err := o.callAuth(ctx, func(ctx context.Context) error {
			var err error
			protocolID, err = o.auth.CreateSession(ctx, s.ProtocolContext())
			return err
		})
		if err != nil {
			log.Printf("layer=service component=challenge method=CreatePaymentSession account_id=%s err=%v", s.AccountID, err)
			return nil, err
		}
		s.ID = protocolID
	}

	if err := o.store.Put(ctx, s.ID, s); err != nil {
		log.Printf("layer=service component=challenge method=CreatePaymentSession session_id=%s err=%v", s.ID, err)
		return nil, err
	}

	o.publish(ctx, events.SessionCreated{
		SessionID:         s.ID,
		AccountID:         s.AccountID,
		Partner:           s.Partner,
		ChallengeScenario: string(s.ChallengeScenario),
		At:                time.Now().UTC(),
	})
	if o.metrics != nil {
		o.metrics.SessionsCreatedAdd(1)
	}

	return &CreateResult{
		SessionID:       s.ID,
		ChallengeStatus: s.ChallengeStatus,
		NeedsMethodStep: !s.ChallengeStatus.Terminal() && s.DeviceChannel == payerauth.DeviceChannelBrowser,
	}, nil
}

func (o *Orchestrator) bypassMOTO(ctx context.Context, s *session.PaymentSession) {
	s.EnrollmentStatus = payerauth.Bypassed
	s.ChallengeStatus = session.StatusPassed

	err := o.callAuth(ctx, func(ctx context.Context) error {
		protocolID, err := o.auth.CreateSession(ctx, s.ProtocolContext())
		if err != nil {
			return err
		}
		s.ID = protocolID
		sc := s.ProtocolContext()
		_, err = o.auth.Authenticate(ctx, payerauth.AuthenticationRequest{
			PaymentSession: sc,
			MessageVersion: o.cfg.MessageVersion,
		})
		return err
	})
	if err != nil {
		// The bypass notification is best-effort; a deaf backend must not
		// block a phone order.
		log.Printf("layer=service component=challenge method=bypassMOTO session_id=%s err=%v", s.ID, err)
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
}

// ResolveMethodURL runs the browser device-fingerprint step: it stores the
// collected browser info and the protocol's method payload on the session.
func (o *Orchestrator) ResolveMethodURL(ctx context.Context, sessionID string, info *payerauth.BrowserInfo) (*payerauth.MethodData, error) {
	s, err := o.store.Get(ctx, sessionID)
	if err != nil {
		log.Printf("layer=service component=challenge method=ResolveMethodURL session_id=%s err=%v", sessionID, err)
		return nil, err
	}
	if s.ChallengeStatus.Terminal() {
		return nil, errors.Join(errs.ErrInvalid, errors.New("session already terminal"))
	}

	s.BrowserInfo = info

	var method *payerauth.MethodData
	err = o.callAuth(ctx, func(ctx context.Context) error {
		var err error
		method, err = o.auth.GetMethodURL(ctx, s.ProtocolContext())
		return err
	})
	if err != nil {
		log.Printf("layer=service component=challenge method=ResolveMethodURL session_id=%s err=%v", sessionID, err)
		return nil, err
	}

	s.MethodData = method
	if err := o.store.Put(ctx, s.ID, s); err != nil {
		log.Printf("layer=service component=challenge method=ResolveMethodURL session_id=%s err=%v", sessionID, err)
		return nil, err
	}
	return method, nil
}

// Authenticate performs the enrollment lookup and, when the instrument is
// enrolled, returns the channel-specific challenge instruction. This is the
// only place isChallengeRequired is decided.
func (o *Orchestrator) Authenticate(ctx context.Context, sessionID string) (*FlowResult, error) {
	s, err := o.store.Get(ctx, sessionID)
	if err != nil {
		log.Printf("layer=service component=challenge method=Authenticate session_id=%s err=%v", sessionID, err)
		return nil, err
	}
	if s.ChallengeStatus.Terminal() {
		return o.replayResult(s), nil
	}

	authReq := payerauth.AuthenticationRequest{
		PaymentSession:           s.ProtocolContext(),
		BrowserInfo:              s.BrowserInfo,
		MethodCompleted:          "N",
		ChallengeNotificationURL: o.cfg.ChallengeNotificationURL,
		MessageVersion:           o.cfg.MessageVersion,
	}
	if s.MethodData != nil {
		authReq.ServerTransactionID = s.MethodData.ServerTransactionID
		authReq.MethodCompleted = "Y"
	}

	var resp *payerauth.AuthenticationResponse
	err = o.callAuth(ctx, func(ctx context.Context) error {
		var err error
		resp, err = o.auth.Authenticate(ctx, authReq)
		return err
	})
	if err != nil {
		log.Printf("layer=service component=challenge method=Authenticate session_id=%s err=%v", sessionID, err)
		return nil, err
	}

	if err := checkEnrollmentInvariants(s.DeviceChannel, resp); err != nil {
		// Contract break with the backend; nothing is persisted so the
		// session never looks further along than it is.
		log.Printf("layer=service component=challenge method=Authenticate session_id=%s err=%v", sessionID, err)
		return nil, err
	}

	s.AuthenticationResponse = resp
	s.EnrollmentStatus = resp.EnrollmentStatus
	s.IsChallengeRequired = resp.EnrollmentStatus == payerauth.Enrolled

	result := &FlowResult{SessionID: s.ID}
	switch resp.EnrollmentStatus {
	case payerauth.NotEnrolled, payerauth.Bypassed:
		s.ApplyChallengeStatus(session.StatusPassed)

	case payerauth.EnrollmentUnavailable:
		s.ApplyChallengeStatus(session.StatusRequiresRetry)
		result.FailureReason = "enrollment check unavailable"

	case payerauth.Enrolled:
		s.ApplyChallengeStatus(session.StatusInProgress)
		if s.DeviceChannel == payerauth.DeviceChannelBrowser {
			result.RedirectURL = resp.AcsURL
			result.SuccessURL = s.SuccessURL
			result.FailureURL = s.FailureURL
			windowSize := WindowSizeFor(browserWindowSize(s.BrowserInfo))
			result.ChallengeWindowSize = &windowSize
		} else {
			result.AcsSignedContent = resp.AcsSignedContent
			result.ServerTransactionID = resp.ServerTransactionID
		}
	}
	result.ChallengeStatus = s.ChallengeStatus

	if err := o.store.Put(ctx, s.ID, s); err != nil {
		log.Printf("layer=service component=challenge method=Authenticate session_id=%s err=%v", sessionID, err)
		return nil, err
	}

	switch s.ChallengeStatus {
	case session.StatusPassed:
		o.publish(ctx, events.ChallengePassed{SessionID: s.ID, TransactionStatus: string(resp.TransactionStatus), At: time.Now().UTC()})
		if o.metrics != nil {
			o.metrics.ChallengesPassedAdd(1)
		}
	case session.StatusInProgress:
		o.publish(ctx, events.ChallengeRequired{SessionID: s.ID, DeviceChannel: string(s.DeviceChannel), At: time.Now().UTC()})
		if o.metrics != nil {
			o.metrics.ChallengesRequiredAdd(1)
		}
	}

	return result, nil
}

// CompleteChallenge resumes a session after the out-of-band challenge and
// maps the protocol's terminal code onto the session. Replays of an already
// terminal session answer from the store without a backend call.
func (o *Orchestrator) CompleteChallenge(ctx context.Context, sessionID string) (*FlowResult, error) {
	s, err := o.store.Get(ctx, sessionID)
	if err != nil {
		log.Printf("layer=service component=challenge method=CompleteChallenge session_id=%s err=%v", sessionID, err)
		return nil, err
	}
	if s.ChallengeStatus.Terminal() {
		return o.replayResult(s), nil
	}

	if s.RiskChallengeStatus == session.RiskAttached {
		if blocked, result := o.resolveRiskChallenge(ctx, s); blocked {
			return result, nil
		}
	}

	var resp *payerauth.CompletionResponse
	err = o.callAuth(ctx, func(ctx context.Context) error {
		var err error
		resp, err = o.auth.CompleteChallenge(ctx, payerauth.CompletionRequest{
			PaymentSession:        s.ProtocolContext(),
			AuthenticationContext: s.AuthenticationResponse,
		})
		return err
	})
	if err != nil {
		log.Printf("layer=service component=challenge method=CompleteChallenge session_id=%s err=%v", sessionID, err)
		return nil, err
	}

	status, reason := MapCompletionStatus(resp)
	s.ApplyChallengeStatus(status)
	s.TransactionStatus = resp.TransactionStatus
	s.TransactionStatusReason = resp.TransactionStatusReason
	s.ChallengeCancelIndicator = resp.ChallengeCancelIndicator

	if err := o.store.Put(ctx, s.ID, s); err != nil {
		log.Printf("layer=service component=challenge method=CompleteChallenge session_id=%s err=%v", sessionID, err)
		return nil, err
	}

	switch s.ChallengeStatus {
	case session.StatusPassed:
		o.publish(ctx, events.ChallengePassed{SessionID: s.ID, TransactionStatus: string(resp.TransactionStatus), At: time.Now().UTC()})
		if o.metrics != nil {
			o.metrics.ChallengesPassedAdd(1)
		}
		o.closeRiskSession(ctx, s, riskchallenge.SessionCompleted)
	case session.StatusFailed:
		o.publish(ctx, events.ChallengeFailed{SessionID: s.ID, TransactionStatus: string(resp.TransactionStatus), Reason: reason, At: time.Now().UTC()})
		if o.metrics != nil {
			o.metrics.ChallengesFailedAdd(1)
		}
		o.closeRiskSession(ctx, s, riskchallenge.SessionAbandoned)
	}

	return &FlowResult{SessionID: s.ID, ChallengeStatus: s.ChallengeStatus, FailureReason: reason}, nil
}

// resolveRiskChallenge settles the bot-detection sub-flow before the primary
// completion is allowed through. A failed bot check or a risk session that no
// longer belongs to the account fails the session; an unreachable risk
// backend degrades and lets the primary flow continue.
func (o *Orchestrator) resolveRiskChallenge(ctx context.Context, s *session.PaymentSession) (bool, *FlowResult) {
	riskSession, err := o.risk.GetChallengeSession(ctx, s.RiskChallengeSessionID)
	if err != nil {
		o.degradeRiskChallenge(ctx, s, err)
		s.RiskChallengeStatus = session.RiskNone
		return false, nil
	}
	if !riskSession.ActiveFor(s.AccountID) {
		log.Printf("layer=service component=challenge method=CompleteChallenge session_id=%s risk_session_id=%s err=risk session not valid for account", s.ID, s.RiskChallengeSessionID)
		return true, o.failRiskChallenge(ctx, s)
	}

	passed, err := o.risk.GetChallengeStatus(ctx, s.RiskChallengeSessionID)
	if err != nil {
		o.degradeRiskChallenge(ctx, s, err)
		s.RiskChallengeStatus = session.RiskNone
		return false, nil
	}
	if passed {
		s.RiskChallengeStatus = session.RiskPassed
		o.closeRiskSession(ctx, s, riskchallenge.SessionCompleted)
		return false, nil
	}

	return true, o.failRiskChallenge(ctx, s)
}

func (o *Orchestrator) failRiskChallenge(ctx context.Context, s *session.PaymentSession) *FlowResult {
	s.RiskChallengeStatus = session.RiskFailed
	reason := "risk challenge not passed"
	s.ApplyChallengeStatus(session.StatusFailed)
	if err := o.store.Put(ctx, s.ID, s); err != nil {
		log.Printf("layer=service component=challenge method=CompleteChallenge session_id=%s err=%v", s.ID, err)
	}
	o.publish(ctx, events.ChallengeFailed{SessionID: s.ID, Reason: reason, At: time.Now().UTC()})
	if o.metrics != nil {
		o.metrics.ChallengesFailedAdd(1)
	}
	o.closeRiskSession(ctx, s, riskchallenge.SessionAbandoned)
	return &FlowResult{SessionID: s.ID, ChallengeStatus: s.ChallengeStatus, FailureReason: reason}
}

func (o *Orchestrator) closeRiskSession(ctx context.Context, s *session.PaymentSession, status string) {
	if s.RiskChallengeSessionID == "" {
		return
	}
	_, err := o.risk.UpdateChallengeSession(ctx, riskchallenge.ChallengeSession{
		SessionID:   s.RiskChallengeSessionID,
		SessionType: riskchallenge.SessionTypeAddInstrument,
		Status:      status,
	})
	if err != nil {
		log.Printf("layer=service component=challenge method=closeRiskSession session_id=%s risk_session_id=%s status=%s err=%v", s.ID, s.RiskChallengeSessionID, status, err)
	}
}

// Status is the polling view. Final requires both the primary challenge and
// the risk sub-flow to be terminal.
func (o *Orchestrator) Status(ctx context.Context, sessionID string) (*StatusResult, error) {
	s, err := o.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &StatusResult{
		SessionID:           s.ID,
		ChallengeStatus:     s.ChallengeStatus,
		RiskChallengeStatus: s.RiskChallengeStatus,
		Final:               s.ChallengeStatus.Terminal() && s.RiskChallengeStatus.Terminal(),
	}, nil
}

// TryGetSession returns the stored session, or nil without error when it is
// unknown or expired.
func (o *Orchestrator) TryGetSession(ctx context.Context, sessionID string) (*session.PaymentSession, error) {
	s, err := o.store.Get(ctx, sessionID)
	if errs.IsNotFound(err) {
		return nil, nil
	}
	return s, err
}

func (o *Orchestrator) replayResult(s *session.PaymentSession) *FlowResult {
	result := &FlowResult{SessionID: s.ID, ChallengeStatus: s.ChallengeStatus}
	if s.ChallengeStatus == session.StatusFailed && s.TransactionStatus != "" {
		_, result.FailureReason = MapCompletionStatus(&payerauth.CompletionResponse{
			TransactionStatus:        s.TransactionStatus,
			TransactionStatusReason:  s.TransactionStatusReason,
			ChallengeCancelIndicator: s.ChallengeCancelIndicator,
		})
	}
	return result
}

// partnerSettings honors the cache-disable flight frozen on the session.
func (o *Orchestrator) partnerSettings(ctx context.Context, s *session.PaymentSession) (partnercfg.Settings, error) {
	if s.HasFlight(FlightDisablePartnerConfigCache) {
		return o.partners.GetFresh(ctx, s.Partner)
	}
	return o.partners.Get(ctx, s.Partner)
}

// callAuth wraps an authentication-backend call in the shared circuit breaker
// and the transient-only retry policy. The client itself never retries; each
// attempt carries a fresh tracking id so the backend can deduplicate.
func (o *Orchestrator) callAuth(ctx context.Context, op func(ctx context.Context) error) error {
	return o.retry.Do(ctx, func(ctx context.Context) error {
		return o.breaker.Do(ctx, op)
	})
}

func (o *Orchestrator) publish(ctx context.Context, evt broker.Event) {
	if o.bus == nil {
		return
	}
	o.bus.Publish(ctx, evt)
}

func newSession(req CreateRequest, instrument *Instrument) *session.PaymentSession {
	return &session.PaymentSession{
		RequestID:                  req.RequestID,
		TenantID:                   req.TenantID,
		AccountID:                  req.AccountID,
		PaymentInstrumentID:        req.PaymentInstrumentID,
		PaymentInstrumentAccountID: instrument.AccountID,
		CommercialAccountID:        req.CommercialAccountID,
		Amount:                     req.Amount,
		Currency:                   req.Currency,
		Country:                    req.Country,
		Partner:                    req.Partner,
		PaymentMethodFamily:        instrument.Family,
		PaymentMethodType:          instrument.Type,
		PurchaseOrderID:            req.PurchaseOrderID,
		IsLegacy:                   req.IsLegacy,
		IsMOTO:                     req.IsMOTO,
		HasPreOrder:                req.HasPreOrder,
		RewardsPoints:              req.RewardsPoints,
		ChallengeScenario:          req.ChallengeScenario,
		DeviceChannel:              req.DeviceChannel,
		ChallengeStatus:            session.StatusUnknown,
		SuccessURL:                 req.SuccessURL,
		FailureURL:                 req.FailureURL,
		RiskChallengeStatus:        session.RiskNone,
		ExposedFlightFeatures:      append([]string(nil), req.Flights...),
		HandlerVersion:             session.HandlerVersion,
		IsGuestCheckout:            req.IsGuestCheckout,
		EmailAddress:               req.EmailAddress,
		Language:                   req.Language,
	}
}

// checkEnrollmentInvariants re-asserts the channel-specific response
// invariants at the orchestration boundary, independent of the client.
func checkEnrollmentInvariants(channel payerauth.DeviceChannel, resp *payerauth.AuthenticationResponse) error {
	if resp.EnrollmentStatus == "" {
		return errs.MissingField("payerauth", "enrollmentStatus")
	}
	if resp.EnrollmentStatus != payerauth.Enrolled {
		return nil
	}
	if channel == payerauth.DeviceChannelBrowser && resp.AcsURL == "" {
		return errs.MissingField("payerauth", "acsUrl")
	}
	if channel == payerauth.DeviceChannelAppBased && (resp.AcsSignedContent == "" || resp.ServerTransactionID == "") {
		return errs.MissingField("payerauth", "acsSignedContent/serverTransactionId")
	}
	return nil
}

func browserWindowSize(info *payerauth.BrowserInfo) string {
	if info == nil {
		return ""
	}
	return info.ChallengeWindowSize
}
