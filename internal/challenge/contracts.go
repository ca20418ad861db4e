package challenge

import (
	"context"
	"encoding/json"

	"paygate/internal/descriptor"
	"paygate/internal/partnercfg"
	"paygate/internal/payerauth"
	"paygate/internal/riskchallenge"
	"paygate/internal/session"
	"paygate/kit/broker"
)

// AuthProtocolContract define the card-network authentication backend calls.
type AuthProtocolContract interface {
	CreateSession(ctx context.Context, sc payerauth.SessionContext) (string, error)
	GetMethodURL(ctx context.Context, sc payerauth.SessionContext) (*payerauth.MethodData, error)
	Authenticate(ctx context.Context, req payerauth.AuthenticationRequest) (*payerauth.AuthenticationResponse, error)
	CompleteChallenge(ctx context.Context, req payerauth.CompletionRequest) (*payerauth.CompletionResponse, error)
}

// RiskChallengeContract define the bot-detection challenge backend calls.
type RiskChallengeContract interface {
	CreateChallengeSession(ctx context.Context, sessionData string) (*riskchallenge.ChallengeSession, error)
	CreateChallenge(ctx context.Context, sessionID, language string, riskScore int, provider string) (json.RawMessage, error)
	GetChallengeSession(ctx context.Context, sessionID string) (*riskchallenge.ChallengeSession, error)
	GetChallengeStatus(ctx context.Context, sessionID string) (bool, error)
	UpdateChallengeSession(ctx context.Context, req riskchallenge.ChallengeSession) (*riskchallenge.ChallengeSession, error)
}

// SessionStoreContract define durable whole-record session persistence.
type SessionStoreContract interface {
	Get(ctx context.Context, id string) (*session.PaymentSession, error)
	Put(ctx context.Context, id string, s *session.PaymentSession) error
	Delete(ctx context.Context, id string) error
}

// InstrumentResolverContract define payment-instrument lookup responsibility.
type InstrumentResolverContract interface {
	Resolve(ctx context.Context, accountID, instrumentID string) (*Instrument, error)
}

// PartnerConfigContract define partner settings lookup responsibility.
type PartnerConfigContract interface {
	Get(ctx context.Context, partner string) (partnercfg.Settings, error)
	GetFresh(ctx context.Context, partner string) (partnercfg.Settings, error)
}

// PublisherContract define publish responsibility (broker).
type PublisherContract interface {
	Publish(ctx context.Context, evt broker.Event) []error
}

// OrchestratorContract define the orchestration surface the handlers consume.
type OrchestratorContract interface {
	CreatePaymentSession(ctx context.Context, req CreateRequest) (*CreateResult, error)
	ResolveMethodURL(ctx context.Context, sessionID string, info *payerauth.BrowserInfo) (*payerauth.MethodData, error)
	Authenticate(ctx context.Context, sessionID string) (*FlowResult, error)
	CompleteChallenge(ctx context.Context, sessionID string) (*FlowResult, error)
	AttachRiskChallenge(ctx context.Context, sessionID string, resources []*descriptor.Resource) ([]*descriptor.Resource, error)
	Status(ctx context.Context, sessionID string) (*StatusResult, error)
}
