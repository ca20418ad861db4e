package session

import (
	"strings"

	"paygate/internal/payerauth"
)

const HandlerVersion = "v1"

// PaymentSession is the aggregate that survives the browser redirect. It is
// serialized whole into the session store after every state transition; there
// are no partial field updates.
type PaymentSession struct {
	ID        string `json:"id"`
	RequestID string `json:"requestId,omitempty"`
	TenantID  string `json:"tenantId,omitempty"`

	// Business context, frozen at creation.
	AccountID                  string                      `json:"accountId"`
	PaymentInstrumentID        string                      `json:"paymentInstrumentId"`
	PaymentInstrumentAccountID string                      `json:"paymentInstrumentAccountId"`
	CommercialAccountID        string                      `json:"commercialAccountId,omitempty"`
	Amount                     int64                       `json:"amount"`
	Currency                   string                      `json:"currency"`
	Country                    string                      `json:"country"`
	Partner                    string                      `json:"partner"`
	PaymentMethodFamily        string                      `json:"paymentMethodFamily,omitempty"`
	PaymentMethodType          string                      `json:"paymentMethodType,omitempty"`
	PurchaseOrderID            string                      `json:"purchaseOrderId,omitempty"`
	IsLegacy                   bool                        `json:"isLegacy"`
	IsMOTO                     bool                        `json:"isMOTO"`
	HasPreOrder                bool                        `json:"hasPreOrder"`
	RewardsPoints              bool                        `json:"rewardsPoints"`
	ChallengeScenario          payerauth.ChallengeScenario `json:"challengeScenario"`
	DeviceChannel              payerauth.DeviceChannel     `json:"deviceChannel"`

	// Protocol progress; monotonic through the flow.
	IsChallengeRequired      bool                              `json:"isChallengeRequired"`
	EnrollmentStatus         payerauth.EnrollmentStatus        `json:"enrollmentStatus,omitempty"`
	BrowserInfo              *payerauth.BrowserInfo            `json:"browserInfo,omitempty"`
	MethodData               *payerauth.MethodData             `json:"methodData,omitempty"`
	AuthenticationResponse   *payerauth.AuthenticationResponse `json:"authenticationResponse,omitempty"`
	ChallengeStatus          ChallengeStatus                   `json:"challengeStatus"`
	TransactionStatus        payerauth.TransactionStatus       `json:"transactionChallengeStatus,omitempty"`
	TransactionStatusReason  payerauth.TransactionStatusReason `json:"transactionChallengeStatusReason,omitempty"`
	ChallengeCancelIndicator string                            `json:"transactionChallengeCancelIndicator,omitempty"`

	// Redirect/resume material.
	SuccessURL       string `json:"successUrl,omitempty"`
	FailureURL       string `json:"failureUrl,omitempty"`
	SessionToken     string `json:"sessionToken,omitempty"`
	IsTokenCollected bool   `json:"isTokenCollected"`

	// Risk sub-flow state, independent of ChallengeStatus.
	RiskChallengeSessionID string              `json:"riskChallengeSessionId,omitempty"`
	RiskChallengeStatus    RiskChallengeStatus `json:"riskChallengeStatus"`

	// Bookkeeping. ExposedFlightFeatures is frozen at session creation so
	// behavior does not change mid-flow.
	ExposedFlightFeatures []string `json:"exposedFlightFeatures,omitempty"`
	HandlerVersion        string   `json:"handlerVersion"`
	IsGuestCheckout       bool     `json:"isGuestCheckout"`
	EmailAddress          string   `json:"emailAddress,omitempty"`
	Language              string   `json:"language,omitempty"`
}

// HasFlight reports whether the named experiment flag was enabled when the
// session was created. Matching is case-insensitive.
func (s *PaymentSession) HasFlight(name string) bool {
	for _, f := range s.ExposedFlightFeatures {
		if strings.EqualFold(f, name) {
			return true
		}
	}
	return false
}

// ProtocolContext projects the session into the protocol-side view the
// authentication backend expects.
func (s *PaymentSession) ProtocolContext() payerauth.SessionContext {
	return payerauth.SessionContext{
		ID:                         s.ID,
		AccountID:                  s.AccountID,
		PaymentInstrumentID:        s.PaymentInstrumentID,
		PaymentInstrumentAccountID: s.PaymentInstrumentAccountID,
		Amount:                     s.Amount,
		Currency:                   s.Currency,
		Country:                    s.Country,
		Partner:                    s.Partner,
		PaymentMethodFamily:        s.PaymentMethodFamily,
		PaymentMethodType:          s.PaymentMethodType,
		ChallengeScenario:          s.ChallengeScenario,
		DeviceChannel:              s.DeviceChannel,
		PurchaseOrderID:            s.PurchaseOrderID,
		IsMOTO:                     s.IsMOTO,
		HasPreOrder:                s.HasPreOrder,
		IsLegacy:                   s.IsLegacy,
		RequiresAuthentication:     s.IsChallengeRequired,
	}
}
