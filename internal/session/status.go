package session

// ChallengeStatus is the gateway-level outcome of the step-up challenge.
// It only moves forward: Unknown -> InProgress -> terminal. Passed and Failed
// never change once set.
type ChallengeStatus string

const (
	StatusUnknown       ChallengeStatus = "unknown"
	StatusInProgress    ChallengeStatus = "inProgress"
	StatusPassed        ChallengeStatus = "passed"
	StatusFailed        ChallengeStatus = "failed"
	StatusRequiresRetry ChallengeStatus = "requiresRetry"
	StatusSystemError   ChallengeStatus = "systemError"
)

func (s ChallengeStatus) Terminal() bool {
	return s == StatusPassed || s == StatusFailed
}

// RequiresRetry and SystemError rank with InProgress: they mean "attempt
// again", so a later attempt must be able to re-enter the normal flow.
func statusRank(s ChallengeStatus) int {
	switch s {
	case StatusUnknown, "":
		return 0
	case StatusInProgress, StatusRequiresRetry, StatusSystemError:
		return 1
	default:
		return 2
	}
}

// ApplyChallengeStatus moves the session's challenge status forward. It
// refuses to leave a terminal state or to move backwards; the return value
// reports whether the status was applied. Replayed completion calls therefore
// cannot flip Passed to Failed or vice versa, while a retryable outcome stays
// open for the next attempt.
func (s *PaymentSession) ApplyChallengeStatus(next ChallengeStatus) bool {
	if s.ChallengeStatus.Terminal() {
		return s.ChallengeStatus == next
	}
	if statusRank(next) < statusRank(s.ChallengeStatus) {
		return false
	}
	s.ChallengeStatus = next
	return true
}

// RiskChallengeStatus tracks the bot-detection sub-flow. Both this and
// ChallengeStatus must be terminal before a final authorization decision.
type RiskChallengeStatus string

const (
	RiskNone     RiskChallengeStatus = "none"
	RiskAttached RiskChallengeStatus = "attached"
	RiskPassed   RiskChallengeStatus = "passed"
	RiskFailed   RiskChallengeStatus = "failed"
)

func (s RiskChallengeStatus) Terminal() bool {
	return s == RiskNone || s == RiskPassed || s == RiskFailed
}
