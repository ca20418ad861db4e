// Package instruments resolves payment instruments to the attributes the
// orchestration layer needs: which family and type a card belongs to and
// whether that family participates in step-up authentication at all.
package instruments

import (
	"context"
	"strings"

	"paygate/internal/challenge"
	"paygate/kit/errs"
)

const (
	FamilyCreditCard = "credit_card"
	FamilyEwallet    = "ewallet"
)

// StaticResolver answers from a fixed instrument table. Instruments absent
// from the table resolve to a credit card, the only family that is ever asked
// to authenticate.
type StaticResolver struct {
	// ByID overrides resolution per instrument id.
	ByID map[string]challenge.Instrument
}

func NewStaticResolver() *StaticResolver {
	return &StaticResolver{}
}

func (r *StaticResolver) Resolve(_ context.Context, accountID, instrumentID string) (*challenge.Instrument, error) {
	if accountID == "" || instrumentID == "" {
		return nil, errs.ErrNotFound
	}
	if in, ok := r.ByID[instrumentID]; ok {
		in.ID = instrumentID
		in.AccountID = accountID
		return &in, nil
	}
	return &challenge.Instrument{
		ID:                     instrumentID,
		AccountID:              accountID,
		Family:                 FamilyCreditCard,
		Type:                   "visa",
		RequiresAuthentication: true,
	}, nil
}

// RequiresAuthentication reports whether a payment method family is in scope
// for step-up. Only card instruments are.
func RequiresAuthentication(family string) bool {
	return strings.EqualFold(family, FamilyCreditCard)
}
