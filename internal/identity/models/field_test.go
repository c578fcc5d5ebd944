package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "idres/pkg/domain-errors"
)

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Loyalty Card #", "loyalty_card_"},
		{"Email", "email"},
		{"  Customer   Number ", "customer_number"},
		{"crm.account-id", "crm.accountid"},
		{"Tab\tSeparated", "tab_separated"},
		{"###", ""},
		{"Été ID", "t_id"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeID(tt.raw))
		})
	}
}

func TestParseMatchFrequency(t *testing.T) {
	f, err := ParseMatchFrequency("weekly")
	require.NoError(t, err)
	assert.Equal(t, FrequencyWeekly, f)

	f, err = ParseMatchFrequency(" ANNUALLY ")
	require.NoError(t, err)
	assert.Equal(t, FrequencyAnnually, f)

	_, err = ParseMatchFrequency("hourly")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestIdentifierFieldValidate(t *testing.T) {
	valid := IdentifierField{ID: "crm_id", DisplayName: "CRM", MatchLimit: 1, MatchFrequency: FrequencyEver}
	require.NoError(t, valid.Validate())

	for name, mutate := range map[string]func(*IdentifierField){
		"empty id":        func(f *IdentifierField) { f.ID = "" },
		"uppercase id":    func(f *IdentifierField) { f.ID = "CRM" },
		"zero limit":      func(f *IdentifierField) { f.MatchLimit = 0 },
		"bad frequency":   func(f *IdentifierField) { f.MatchFrequency = "Hourly" },
		"empty frequency": func(f *IdentifierField) { f.MatchFrequency = "" },
	} {
		t.Run(name, func(t *testing.T) {
			f := valid
			mutate(&f)
			assert.True(t, dErrors.HasCode(f.Validate(), dErrors.CodeValidation))
		})
	}
}

func TestLedgerEligible(t *testing.T) {
	email, _ := CatalogEntry("email")
	phone, _ := CatalogEntry("phone")
	custom := NewCustomField("Loyalty")

	assert.True(t, email.LedgerEligible())
	assert.True(t, phone.IsCustom)
	assert.True(t, phone.LedgerEligible())
	assert.False(t, custom.LedgerEligible())
}

func TestCatalog(t *testing.T) {
	cat := Catalog()
	require.Len(t, cat, 11)
	assert.Equal(t, "phone", cat[2].ID)

	cat[0].ID = "mutated"
	assert.Equal(t, "user_id", Catalog()[0].ID, "Catalog must return a copy")

	for _, f := range Catalog() {
		assert.NoError(t, f.Validate(), f.ID)
		assert.True(t, f.Enabled, f.ID)
		assert.NotEmpty(t, PayloadLocation(f.ID), f.ID)
	}
	assert.Empty(t, PayloadLocation("loyalty_card_"))
}
