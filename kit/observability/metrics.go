package observability

import "sync/atomic"

type Metrics struct {
	SessionsCreated        atomic.Int64
	ChallengesRequired     atomic.Int64
	ChallengesPassed       atomic.Int64
	ChallengesFailed       atomic.Int64
	RiskChallengesAttached atomic.Int64
	RiskChallengesDegraded atomic.Int64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) SessionsCreatedAdd(n int64) {
	m.SessionsCreated.Add(n)
}

func (m *Metrics) ChallengesRequiredAdd(n int64) {
	m.ChallengesRequired.Add(n)
}

func (m *Metrics) ChallengesPassedAdd(n int64) {
	m.ChallengesPassed.Add(n)
}

func (m *Metrics) ChallengesFailedAdd(n int64) {
	m.ChallengesFailed.Add(n)
}

func (m *Metrics) RiskChallengesAttachedAdd(n int64) {
	m.RiskChallengesAttached.Add(n)
}

func (m *Metrics) RiskChallengesDegradedAdd(n int64) {
	m.RiskChallengesDegraded.Add(n)
}

type Snapshot struct {
	SessionsCreated        int64 `json:"sessions_created"`
	ChallengesRequired     int64 `json:"challenges_required"`
	ChallengesPassed       int64 `json:"challenges_passed"`
	ChallengesFailed       int64 `json:"challenges_failed"`
	RiskChallengesAttached int64 `json:"risk_challenges_attached"`
	RiskChallengesDegraded int64 `json:"risk_challenges_degraded"`
}

func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		SessionsCreated:        m.SessionsCreated.Load(),
		ChallengesRequired:     m.ChallengesRequired.Load(),
		ChallengesPassed:       m.ChallengesPassed.Load(),
		ChallengesFailed:       m.ChallengesFailed.Load(),
		RiskChallengesAttached: m.RiskChallengesAttached.Load(),
		RiskChallengesDegraded: m.RiskChallengesDegraded.Load(),
	}
}
