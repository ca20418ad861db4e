package challenge

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"paygate/internal/partnercfg"
	"paygate/internal/payerauth"
	"paygate/internal/riskchallenge"
	"paygate/kit/broker"
)

type AuthProtocolMock struct {
	mock.Mock
	AuthProtocolContract
}

func (m *AuthProtocolMock) CreateSession(ctx context.Context, sc payerauth.SessionContext) (string, error) {
	args := m.Called(ctx, sc)
	return args.String(0), args.Error(1)
}

func (m *AuthProtocolMock) GetMethodURL(ctx context.Context, sc payerauth.SessionContext) (*payerauth.MethodData, error) {
	args := m.Called(ctx, sc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payerauth.MethodData), args.Error(1)
}

func (m *AuthProtocolMock) Authenticate(ctx context.Context, req payerauth.AuthenticationRequest) (*payerauth.AuthenticationResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payerauth.AuthenticationResponse), args.Error(1)
}

func (m *AuthProtocolMock) CompleteChallenge(ctx context.Context, req payerauth.CompletionRequest) (*payerauth.CompletionResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payerauth.CompletionResponse), args.Error(1)
}

type RiskChallengeMock struct {
	mock.Mock
	RiskChallengeContract
}

func (m *RiskChallengeMock) CreateChallengeSession(ctx context.Context, sessionData string) (*riskchallenge.ChallengeSession, error) {
	args := m.Called(ctx, sessionData)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*riskchallenge.ChallengeSession), args.Error(1)
}

func (m *RiskChallengeMock) CreateChallenge(ctx context.Context, sessionID, language string, riskScore int, provider string) (json.RawMessage, error) {
	args := m.Called(ctx, sessionID, language, riskScore, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *RiskChallengeMock) GetChallengeSession(ctx context.Context, sessionID string) (*riskchallenge.ChallengeSession, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*riskchallenge.ChallengeSession), args.Error(1)
}

func (m *RiskChallengeMock) GetChallengeStatus(ctx context.Context, sessionID string) (bool, error) {
	args := m.Called(ctx, sessionID)
	return args.Bool(0), args.Error(1)
}

func (m *RiskChallengeMock) UpdateChallengeSession(ctx context.Context, req riskchallenge.ChallengeSession) (*riskchallenge.ChallengeSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*riskchallenge.ChallengeSession), args.Error(1)
}

type InstrumentResolverMock struct {
	mock.Mock
	InstrumentResolverContract
}

func (m *InstrumentResolverMock) Resolve(ctx context.Context, accountID, instrumentID string) (*Instrument, error) {
	args := m.Called(ctx, accountID, instrumentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Instrument), args.Error(1)
}

type PartnerConfigMock struct {
	mock.Mock
	PartnerConfigContract
}

func (m *PartnerConfigMock) Get(ctx context.Context, partner string) (partnercfg.Settings, error) {
	args := m.Called(ctx, partner)
	return args.Get(0).(partnercfg.Settings), args.Error(1)
}

func (m *PartnerConfigMock) GetFresh(ctx context.Context, partner string) (partnercfg.Settings, error) {
	args := m.Called(ctx, partner)
	return args.Get(0).(partnercfg.Settings), args.Error(1)
}

type PublisherMock struct {
	mock.Mock
	PublisherContract
}

func (m *PublisherMock) Publish(ctx context.Context, evt broker.Event) []error {
	args := m.Called(ctx, evt)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]error)
}
