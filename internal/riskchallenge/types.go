package riskchallenge

import "encoding/json"

// Session statuses understood by the challenge-session backend.
const (
	SessionActive    = "active"
	SessionCompleted = "completed"
	SessionAbandoned = "abandoned"
)

// SessionType tags the blobs this gateway stores; the backend is
// schema-agnostic and only echoes it back.
const SessionTypeAddInstrument = "addInstrumentSession"

// Challenge providers. Captcha is the default; proof-of-work is
// experiment-gated.
const (
	ProviderCaptcha     = "captcha"
	ProviderProofOfWork = "pow"
)

// ChallengeSession is the generic blob record held by the challenge-session
// backend. SessionData is caller-defined JSON serialized to a string; the
// backend never interprets it.
type ChallengeSession struct {
	SessionID                string `json:"sessionId,omitempty"`
	SessionType              string `json:"sessionType,omitempty"`
	SessionData              string `json:"sessionData,omitempty"`
	SessionLength            int    `json:"sessionLength,omitempty"`
	SessionSlidingExpiration bool   `json:"sessionSlidingExpiration,omitempty"`
	Status                   string `json:"status,omitempty"`
}

// ActiveFor reports whether the session is still active and was opened for
// the given account. A blob that does not parse or names a different account
// is not valid for the caller.
func (s *ChallengeSession) ActiveFor(accountID string) bool {
	if s == nil || s.Status != SessionActive {
		return false
	}
	var data SessionData
	if err := json.Unmarshal([]byte(s.SessionData), &data); err != nil {
		return false
	}
	return data.AccountID != "" && data.AccountID == accountID
}

// SessionData is the blob this gateway stores per risk-challenge session.
type SessionData struct {
	Language          string `json:"language,omitempty"`
	Partner           string `json:"partner,omitempty"`
	Country           string `json:"country,omitempty"`
	Operation         string `json:"operation,omitempty"`
	Family            string `json:"family,omitempty"`
	InstrumentType    string `json:"instrumentType,omitempty"`
	AccountID         string `json:"accountId,omitempty"`
	ChallengeRequired bool   `json:"challengeRequired"`
}

type createChallengeRequest struct {
	SessionID          string `json:"sessionId"`
	ChallengeRequestor string `json:"challengeRequestorName"`
	RiskScore          int    `json:"riskScore"`
	ChallengeProvider  string `json:"challengeProviderName"`
}

type statusResult struct {
	SessionID string `json:"sessionId"`
	Passed    bool   `json:"passed"`
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
