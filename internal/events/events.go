package events

import "time"

type SessionCreated struct {
	SessionID         string    `json:"session_id"`
	AccountID         string    `json:"account_id"`
	Partner           string    `json:"partner"`
	ChallengeScenario string    `json:"challenge_scenario"`
	At                time.Time `json:"at"`
}

func (SessionCreated) Name() string { return "session.created" }

func (e SessionCreated) PartitionKey() string { return e.SessionID }

type ChallengeRequired struct {
	SessionID     string    `json:"session_id"`
	DeviceChannel string    `json:"device_channel"`
	At            time.Time `json:"at"`
}

func (ChallengeRequired) Name() string { return "challenge.required" }

func (e ChallengeRequired) PartitionKey() string { return e.SessionID }

type ChallengePassed struct {
	SessionID         string    `json:"session_id"`
	TransactionStatus string    `json:"transaction_status"`
	At                time.Time `json:"at"`
}

func (ChallengePassed) Name() string { return "challenge.passed" }

func (e ChallengePassed) PartitionKey() string { return e.SessionID }

type ChallengeFailed struct {
	SessionID         string    `json:"session_id"`
	TransactionStatus string    `json:"transaction_status"`
	Reason            string    `json:"reason"`
	At                time.Time `json:"at"`
}

func (ChallengeFailed) Name() string { return "challenge.failed" }

func (e ChallengeFailed) PartitionKey() string { return e.SessionID }

type RiskChallengeAttached struct {
	SessionID     string    `json:"session_id"`
	RiskSessionID string    `json:"risk_session_id"`
	Provider      string    `json:"provider"`
	RiskScore     int       `json:"risk_score"`
	At            time.Time `json:"at"`
}

func (RiskChallengeAttached) Name() string { return "risk_challenge.attached" }

func (e RiskChallengeAttached) PartitionKey() string { return e.SessionID }

type RiskChallengeDegraded struct {
	SessionID string    `json:"session_id"`
	Reason    string    `json:"reason"`
	At        time.Time `json:"at"`
}

func (RiskChallengeDegraded) Name() string { return "risk_challenge.degraded" }

func (e RiskChallengeDegraded) PartitionKey() string { return e.SessionID }
