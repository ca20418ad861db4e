package challenge

import (
	"errors"
	"fmt"

	"paygate/internal/payerauth"
)

var ErrInvalidCreateRequest = errors.New("invalid create request")

func validateCreateRequest(r CreateRequest) error {
	switch {
	case r.AccountID == "":
		return fmt.Errorf("%w: accountId is required", ErrInvalidCreateRequest)
	case r.PaymentInstrumentID == "":
		return fmt.Errorf("%w: paymentInstrumentId is required", ErrInvalidCreateRequest)
	case r.Partner == "":
		return fmt.Errorf("%w: partner is required", ErrInvalidCreateRequest)
	case r.Amount < 0:
		return fmt.Errorf("%w: amount must not be negative", ErrInvalidCreateRequest)
	case r.Currency == "":
		return fmt.Errorf("%w: currency is required", ErrInvalidCreateRequest)
	}

	switch r.ChallengeScenario {
	case payerauth.ScenarioAddCard, payerauth.ScenarioPaymentTransaction, payerauth.ScenarioRecurringTransaction:
	default:
		return fmt.Errorf("%w: unknown challengeScenario %q", ErrInvalidCreateRequest, r.ChallengeScenario)
	}

	switch r.DeviceChannel {
	case payerauth.DeviceChannelBrowser, payerauth.DeviceChannelAppBased:
	default:
		return fmt.Errorf("%w: unknown deviceChannel %q", ErrInvalidCreateRequest, r.DeviceChannel)
	}

	return nil
}
