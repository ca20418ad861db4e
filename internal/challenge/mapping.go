package challenge

import (
	"paygate/internal/payerauth"
	"paygate/internal/session"
)

// MapCompletionStatus folds the backend's terminal transaction status into
// the session's challenge status. The match is exhaustive over the protocol's
// closed code set; anything unrecognized is a system error, never a soft
// default, because "unknown" is not a safe authentication outcome.
func MapCompletionStatus(resp *payerauth.CompletionResponse) (session.ChallengeStatus, string) {
	switch resp.TransactionStatus {
	case payerauth.TransAuthenticated, payerauth.TransAttempted:
		return session.StatusPassed, ""
	case payerauth.TransNotAuthenticated:
		return session.StatusFailed, notAuthenticatedReason(resp)
	case payerauth.TransRejected:
		return session.StatusFailed, "rejected by issuer"
	case payerauth.TransFraudRejected:
		return session.StatusFailed, "rejected by fraud screen"
	case payerauth.TransUnavailable:
		return session.StatusRequiresRetry, "authentication unavailable"
	case payerauth.TransChallengeRequired:
		// The completion step must answer with a terminal code; a
		// challenge-required answer here means the flow is stuck.
		return session.StatusSystemError, "challenge still required at completion"
	default:
		return session.StatusSystemError, "unmapped transaction status " + string(resp.TransactionStatus)
	}
}

func notAuthenticatedReason(resp *payerauth.CompletionResponse) string {
	if resp.TransactionStatusReason == payerauth.ReasonTransactionTimedOut {
		return "challenge timed out"
	}
	switch resp.ChallengeCancelIndicator {
	case payerauth.CancelledByCardholder:
		return "cancelled by cardholder"
	case payerauth.CancelledByRequestor:
		return "cancelled by requestor"
	case payerauth.CancelTransactionTimeout, payerauth.CancelRequestTimeout:
		return "challenge timed out"
	case payerauth.CancelAbandoned:
		return "challenge abandoned"
	}
	return "not authenticated"
}
