package handlers

import "context"

// AuditorContract define audit recording responsibility.
type AuditorContract interface {
	Record(ctx context.Context, eventName string, fields map[string]any)
}

// MetricsContract define counter responsibility for domain events.
type MetricsContract interface {
	SessionsCreatedAdd(n int64)
	ChallengesRequiredAdd(n int64)
	ChallengesPassedAdd(n int64)
	ChallengesFailedAdd(n int64)
	RiskChallengesAttachedAdd(n int64)
	RiskChallengesDegradedAdd(n int64)
}
