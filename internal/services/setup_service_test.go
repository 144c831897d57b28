package services

import (
	"context"
	"testing"

	"github.com/alexandermaat99/intermountain-dumpsters-sub001/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCreateSetupIntent_UnknownExternalIDMakesNoRemoteCall(t *testing.T) {
	provider := &mockProvider{SetupID: "seti_1", SetupSecret: "secret"}
	svc := NewSetupService(&mockCustomerStore{ByExternal: nil}, provider, zap.NewNop())

	_, err := svc.CreateSetupIntent(context.Background(), "cus_unverified", 0)

	assert.ErrorIs(t, err, ErrCustomerNotFound)
	assert.Zero(t, provider.SetupCalls)
}

func TestCreateSetupIntent_EmptyExternalIDRejected(t *testing.T) {
	provider := &mockProvider{}
	svc := NewSetupService(&mockCustomerStore{}, provider, zap.NewNop())

	_, err := svc.CreateSetupIntent(context.Background(), "", 0)

	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, provider.SetupCalls)
}

func TestCreateSetupIntent_VerifiedCustomerGetsToken(t *testing.T) {
	ext := "cus_9"
	customers := &mockCustomerStore{ByExternal: &model.Customer{
		CustomerID:         42,
		Email:              "dana@example.com",
		ExternalCustomerID: &ext,
	}}
	provider := &mockProvider{SetupID: "seti_1", SetupSecret: "seti_1_secret"}
	svc := NewSetupService(customers, provider, zap.NewNop())

	result, err := svc.CreateSetupIntent(context.Background(), "cus_9", 7)
	require.NoError(t, err)

	assert.Equal(t, "seti_1", result.SetupIntentID)
	assert.Equal(t, "seti_1_secret", result.ClientSecret)
	assert.Equal(t, 1, provider.SetupCalls)
}
