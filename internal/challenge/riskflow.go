package challenge

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"paygate/internal/descriptor"
	"paygate/internal/events"
	"paygate/internal/riskchallenge"
	"paygate/internal/session"
	"paygate/kit/errs"
)

// riskScoreFor resolves the challenge complexity from the session's frozen
// flights. Low is checked before high; that source order is the binding
// contract when both are present.
func riskScoreFor(s *session.PaymentSession) int {
	if s.HasFlight(FlightRiskChallengeComplexityLow) {
		return 30
	}
	if s.HasFlight(FlightRiskChallengeComplexityHigh) {
		return 90
	}
	return 50
}

func providerFor(s *session.PaymentSession) string {
	if s.HasFlight(FlightRiskChallengeProviderPow) {
		return riskchallenge.ProviderProofOfWork
	}
	return riskchallenge.ProviderCaptcha
}

// AttachRiskChallenge weaves a bot-detection challenge into the caller's form
// resources. Every failure degrades: the primary authentication flow never
// aborts because the optional defense-in-depth layer is down.
func (o *Orchestrator) AttachRiskChallenge(ctx context.Context, sessionID string, resources []*descriptor.Resource) ([]*descriptor.Resource, error) {
	s, err := o.store.Get(ctx, sessionID)
	if err != nil {
		log.Printf("layer=service component=challenge method=AttachRiskChallenge session_id=%s err=%v", sessionID, err)
		return nil, err
	}

	settings, err := o.partnerSettings(ctx, s)
	if err != nil {
		o.degradeRiskChallenge(ctx, s, fmt.Errorf("partner settings: %w", err))
		return resources, nil
	}
	if !settings.RiskChallengeEnabled {
		return resources, nil
	}

	riskSession, err := o.createRiskSession(ctx, s)
	if err != nil {
		o.degradeRiskChallenge(ctx, s, err)
		return resources, nil
	}

	score := riskScoreFor(s)
	provider := providerFor(s)
	raw, err := o.risk.CreateChallenge(ctx, riskSession.SessionID, s.Language, score, provider)
	if err != nil {
		o.degradeRiskChallenge(ctx, s, fmt.Errorf("create challenge: %w", err))
		return resources, nil
	}

	parsed, err := descriptor.Parse(raw)
	if err != nil || len(parsed) == 0 {
		o.degradeRiskChallenge(ctx, s, fmt.Errorf("parse challenge descriptor: %w", errs.ErrIntegration))
		return resources, nil
	}
	challengeResource := parsed[0]
	if len(challengeResource.Pages) == 0 {
		o.degradeRiskChallenge(ctx, s, fmt.Errorf("challenge descriptor has no pages: %w", errs.ErrIntegration))
		return resources, nil
	}

	if s.HasFlight(FlightRiskChallengeMultipage) {
		// A session may only be marked attached when the challenge actually
		// made it into the form; otherwise completion would gate on a
		// challenge nobody ever saw.
		if !composeMultipage(resources, challengeResource) {
			o.degradeRiskChallenge(ctx, s, fmt.Errorf("form has no save button to rewire"))
			return resources, nil
		}
	} else {
		challengeResource.MakeSecondary()
		challengeResource.SetErrorHandlingToIgnore()
		descriptor.AddLinked(resources, challengeResource)
	}

	s.RiskChallengeSessionID = riskSession.SessionID
	s.RiskChallengeStatus = session.RiskAttached
	if err := o.store.Put(ctx, s.ID, s); err != nil {
		log.Printf("layer=service component=challenge method=AttachRiskChallenge session_id=%s err=%v", s.ID, err)
		return nil, err
	}

	o.publish(ctx, events.RiskChallengeAttached{
		SessionID:     s.ID,
		RiskSessionID: riskSession.SessionID,
		Provider:      provider,
		RiskScore:     score,
		At:            time.Now().UTC(),
	})
	if o.metrics != nil {
		o.metrics.RiskChallengesAttachedAdd(1)
	}
	return resources, nil
}

func (o *Orchestrator) createRiskSession(ctx context.Context, s *session.PaymentSession) (*riskchallenge.ChallengeSession, error) {
	blob, err := json.Marshal(riskchallenge.SessionData{
		Language:          s.Language,
		Partner:           s.Partner,
		Country:           s.Country,
		Operation:         string(s.ChallengeScenario),
		Family:            s.PaymentMethodFamily,
		InstrumentType:    s.PaymentMethodType,
		AccountID:         s.AccountID,
		ChallengeRequired: true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal risk session data: %w", err)
	}
	riskSession, err := o.risk.CreateChallengeSession(ctx, string(blob))
	if err != nil {
		return nil, fmt.Errorf("create risk session: %w", err)
	}
	return riskSession, nil
}

func (o *Orchestrator) degradeRiskChallenge(ctx context.Context, s *session.PaymentSession, cause error) {
	log.Printf("layer=service component=challenge method=AttachRiskChallenge session_id=%s degraded err=%v", s.ID, fmt.Errorf("%w: %v", errs.ErrRiskChallengeDegraded, cause))
	o.publish(ctx, events.RiskChallengeDegraded{SessionID: s.ID, Reason: cause.Error(), At: time.Now().UTC()})
	if o.metrics != nil {
		o.metrics.RiskChallengesDegradedAdd(1)
	}
}

// composeMultipage puts the challenge page in front of every form: the
// challenge renders first, its next button jumps to the first form page, and
// the form's own save button moves onto the challenge page next to a back
// control. The save action is removed from the form's submit group so the
// form cannot submit around the challenge. It reports whether the challenge
// was actually woven in; a form without a save button cannot be rewired.
func composeMultipage(resources []*descriptor.Resource, challengeResource *descriptor.Resource) bool {
	if len(resources) == 0 || len(challengeResource.Pages) == 0 {
		return false
	}
	challengePage := challengeResource.Pages[0]

	saveButton := resources[0].SaveButton()
	if saveButton == nil {
		return false
	}

	backButton := &descriptor.Hint{
		ID:      descriptor.HintBackButton,
		Kind:    descriptor.KindButton,
		Action:  descriptor.ActionMoveNext,
		Content: "Back",
	}
	backSaveGroup := &descriptor.Hint{
		ID:          descriptor.HintBackSaveGroup,
		Kind:        descriptor.KindGroup,
		Layout:      "inline",
		SubmitGroup: true,
		Members:     []*descriptor.Hint{backButton, saveButton},
	}
	challengePage.AddMember(backSaveGroup)

	nextButton := &descriptor.Hint{
		ID:      descriptor.HintNextButton,
		Kind:    descriptor.KindButton,
		Action:  descriptor.ActionMoveFirst,
		Content: "Next",
	}

	for _, r := range resources {
		var submitGroup *descriptor.Hint
		if save := r.SaveButton(); save != nil {
			submitGroup = r.ParentSubmitGroup(save.ID)
			if submitGroup != nil {
				submitGroup.AddMember(nextButton)
				submitGroup.RemoveMember(save.ID)
			}
		}
		r.InsertPageAt(0, challengePage)
	}
	return true
}
