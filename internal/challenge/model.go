package challenge

import (
	"paygate/internal/payerauth"
	"paygate/internal/session"
)

// Experiment flags recognized by the orchestrator. The set a session sees is
// frozen at creation.
const (
	FlightRiskChallengeComplexityLow  = "RiskChallengeComplexityLow"
	FlightRiskChallengeComplexityHigh = "RiskChallengeComplexityHigh"
	FlightRiskChallengeProviderPow    = "RiskChallengeProviderPow"
	FlightRiskChallengeMultipage      = "RiskChallengeMultipage"
	FlightDisablePartnerConfigCache   = "DisablePartnerConfigCache"
)

// Instrument is the resolved view of a payment instrument: whether it
// participates in step-up authentication at all.
type Instrument struct {
	ID                     string
	AccountID              string
	Family                 string
	Type                   string
	RequiresAuthentication bool
}

// CreateRequest carries the business context a caller opens a session with.
type CreateRequest struct {
	RequestID           string                      `json:"requestId,omitempty"`
	TenantID            string                      `json:"tenantId,omitempty"`
	AccountID           string                      `json:"accountId"`
	PaymentInstrumentID string                      `json:"paymentInstrumentId"`
	CommercialAccountID string                      `json:"commercialAccountId,omitempty"`
	Amount              int64                       `json:"amount"`
	Currency            string                      `json:"currency"`
	Country             string                      `json:"country"`
	Partner             string                      `json:"partner"`
	PurchaseOrderID     string                      `json:"purchaseOrderId,omitempty"`
	IsLegacy            bool                        `json:"isLegacy"`
	IsMOTO              bool                        `json:"isMOTO"`
	HasPreOrder         bool                        `json:"hasPreOrder"`
	RewardsPoints       bool                        `json:"rewardsPoints"`
	ChallengeScenario   payerauth.ChallengeScenario `json:"challengeScenario"`
	DeviceChannel       payerauth.DeviceChannel     `json:"deviceChannel"`
	SuccessURL          string                      `json:"successUrl,omitempty"`
	FailureURL          string                      `json:"failureUrl,omitempty"`
	Flights             []string                    `json:"flights,omitempty"`
	IsGuestCheckout     bool                        `json:"isGuestCheckout"`
	EmailAddress        string                      `json:"emailAddress,omitempty"`
	Language            string                      `json:"language,omitempty"`
}

// CreateResult tells the caller what the new session needs next.
type CreateResult struct {
	SessionID       string                  `json:"sessionId"`
	ChallengeStatus session.ChallengeStatus `json:"challengeStatus"`
	// NeedsMethodStep is set when a browser flow should run the device
	// fingerprint step before authenticating.
	NeedsMethodStep bool `json:"needsMethodStep"`
}

// FlowResult is the caller-facing outcome of an authenticate or completion
// step: either a terminal status or the instruction to run a challenge.
type FlowResult struct {
	SessionID       string                  `json:"sessionId"`
	ChallengeStatus session.ChallengeStatus `json:"challengeStatus"`
	FailureReason   string                  `json:"failureReason,omitempty"`

	// Browser challenge instruction.
	RedirectURL         string           `json:"redirectUrl,omitempty"`
	SuccessURL          string           `json:"successUrl,omitempty"`
	FailureURL          string           `json:"failureUrl,omitempty"`
	ChallengeWindowSize *WindowDimension `json:"challengeWindowSize,omitempty"`

	// App challenge instruction.
	AcsSignedContent    string `json:"acsSignedContent,omitempty"`
	ServerTransactionID string `json:"serverTransactionId,omitempty"`
}

// StatusResult is the polling view of a session. Final means both the
// primary challenge and the risk sub-flow reached a terminal state.
type StatusResult struct {
	SessionID           string                      `json:"sessionId"`
	ChallengeStatus     session.ChallengeStatus     `json:"challengeStatus"`
	RiskChallengeStatus session.RiskChallengeStatus `json:"riskChallengeStatus"`
	Final               bool                        `json:"final"`
}

// WindowDimension is the pixel size a browser challenge iframe renders at.
type WindowDimension struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Named challenge window sizes, per the protocol's fixed table. Fullscreen is
// encoded as zero dimensions.
var windowDimensions = map[string]WindowDimension{
	"01": {Name: "01", Width: 250, Height: 400},
	"02": {Name: "02", Width: 390, Height: 400},
	"03": {Name: "03", Width: 500, Height: 600},
	"04": {Name: "04", Width: 600, Height: 400},
	"05": {Name: "05"},
}

const defaultWindowSize = "03"

// WindowSizeFor resolves a named challenge window size, defaulting when the
// browser did not announce one.
func WindowSizeFor(name string) WindowDimension {
	if d, ok := windowDimensions[name]; ok {
		return d
	}
	return windowDimensions[defaultWindowSize]
}
