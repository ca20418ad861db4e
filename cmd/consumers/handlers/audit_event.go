package handlers

import (
	"context"
	"fmt"

	"paygate/internal/events"
	"paygate/kit/broker"
)

type AuditEvent struct {
	audit AuditorContract
}

func NewAuditEvent(a AuditorContract) *AuditEvent {
	return &AuditEvent{audit: a}
}

func (h *AuditEvent) HandleAny(ctx context.Context, evt broker.Event) error {
	if h.audit == nil {
		return nil
	}

	fields := map[string]any{"type": fmt.Sprintf("%T", evt)}
	switch e := evt.(type) {
	case events.SessionCreated:
		fields["session_id"] = e.SessionID
		fields["account_id"] = e.AccountID
		fields["partner"] = e.Partner
		fields["challenge_scenario"] = e.ChallengeScenario
	case events.ChallengeRequired:
		fields["session_id"] = e.SessionID
		fields["device_channel"] = e.DeviceChannel
	case events.ChallengePassed:
		fields["session_id"] = e.SessionID
		fields["transaction_status"] = e.TransactionStatus
	case events.ChallengeFailed:
		fields["session_id"] = e.SessionID
		fields["transaction_status"] = e.TransactionStatus
		fields["reason"] = e.Reason
	case events.RiskChallengeAttached:
		fields["session_id"] = e.SessionID
		fields["risk_session_id"] = e.RiskSessionID
		fields["provider"] = e.Provider
		fields["risk_score"] = e.RiskScore
	case events.RiskChallengeDegraded:
		fields["session_id"] = e.SessionID
		fields["reason"] = e.Reason
	}

	h.audit.Record(ctx, evt.Name(), fields)
	return nil
}
