package instruments

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"paygate/internal/challenge"
	"paygate/kit/errs"
)

func TestStaticResolver_Resolve(t *testing.T) {
	r := NewStaticResolver()
	r.ByID = map[string]challenge.Instrument{
		"pi-wallet": {Family: FamilyEwallet, Type: "stored_value", RequiresAuthentication: false},
	}

	var tests = []struct {
		name         string
		accountID    string
		instrumentID string
		wantFamily   string
		wantAuth     bool
		wantErr      error
	}{
		{name: "unlisted instrument defaults to credit card", accountID: "acct-1", instrumentID: "pi-1", wantFamily: FamilyCreditCard, wantAuth: true},
		{name: "listed instrument uses table entry", accountID: "acct-1", instrumentID: "pi-wallet", wantFamily: FamilyEwallet, wantAuth: false},
		{name: "missing instrument id", accountID: "acct-1", instrumentID: "", wantErr: errs.ErrNotFound},
		{name: "missing account id", accountID: "", instrumentID: "pi-1", wantErr: errs.ErrNotFound},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			in, err := r.Resolve(context.Background(), tt.accountID, tt.instrumentID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.instrumentID, in.ID)
			require.Equal(t, tt.accountID, in.AccountID)
			require.Equal(t, tt.wantFamily, in.Family)
			require.Equal(t, tt.wantAuth, in.RequiresAuthentication)
		})
	}
}

func TestRequiresAuthentication(t *testing.T) {
	require.True(t, RequiresAuthentication("credit_card"))
	require.True(t, RequiresAuthentication("CREDIT_CARD"))
	require.False(t, RequiresAuthentication("ewallet"))
	require.False(t, RequiresAuthentication(""))
}
