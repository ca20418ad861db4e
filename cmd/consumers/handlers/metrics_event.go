package handlers

import (
	"context"

	"paygate/internal/events"
	"paygate/kit/broker"
)

type MetricsEvent struct {
	m MetricsContract
}

func NewMetricsEvent(m MetricsContract) *MetricsEvent {
	return &MetricsEvent{m: m}
}

func (h *MetricsEvent) HandleAny(ctx context.Context, evt broker.Event) error {
	if h.m == nil {
		return nil
	}

	switch evt.(type) {
	case events.SessionCreated:
		h.m.SessionsCreatedAdd(1)
	case events.ChallengeRequired:
		h.m.ChallengesRequiredAdd(1)
	case events.ChallengePassed:
		h.m.ChallengesPassedAdd(1)
	case events.ChallengeFailed:
		h.m.ChallengesFailedAdd(1)
	case events.RiskChallengeAttached:
		h.m.RiskChallengesAttachedAdd(1)
	case events.RiskChallengeDegraded:
		h.m.RiskChallengesDegradedAdd(1)
	}
	return nil
}
