package dto

import (
	"encoding/json"
	"testing"

	"github.com/alimikegami/healthcare-microservices/users-service/pkg/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClinicianUpdateRequestDecoding(t *testing.T) {
	body := `{
		"first_name": " Jane ",
		"email_address": null,
		"contract_expiry_eod_date": null,
		"groups": "SEND Clinician",
		"locations": ["L1"],
		"password": "new-password"
	}`

	req := ClinicianUpdateRequest{}
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	assert.True(t, req.FirstName.Set)
	assert.Equal(t, " Jane ", *req.FirstName.Value)

	assert.True(t, req.EmailAddress.IsNull())
	assert.True(t, req.ContractExpiryEODDate.IsNull())
	assert.False(t, req.LastName.Set)

	assert.Equal(t, StringList{"SEND Clinician"}, req.Groups)
	assert.Equal(t, []string{"L1"}, req.Locations)
	assert.Nil(t, req.Bookmarks)

	assert.ElementsMatch(t, []string{
		"first_name",
		"email_address",
		"contract_expiry_eod_date",
		"groups",
		"locations",
		"password_salt",
		"password_hash",
	}, req.FieldNames())
}

func TestClinicianRemoveRequestIgnoresScalars(t *testing.T) {
	req := ClinicianRemoveRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"phone_number": "01234999999"}`), &req))

	assert.Nil(t, req.Groups)
	assert.Nil(t, req.Products)
}

func TestClinicianCreateRequestValidate(t *testing.T) {
	valid := ClinicianCreateRequest{
		FirstName:          "Jane",
		LastName:           "Deer",
		PhoneNumber:        "07123456789",
		JobTitle:           "Nurse",
		NHSSmartcardNumber: "0123456",
		Locations:          []string{},
		Groups:             StringList{"SEND Clinician"},
		Products:           []ProductRequest{{ProductName: "SEND"}},
	}
	assert.NoError(t, valid.Validate())

	missing := valid
	missing.Groups = nil
	missing.JobTitle = ""
	err := missing.Validate()
	assert.ErrorIs(t, err, errs.ErrValidation)
	assert.Contains(t, err.Error(), "job_title")
	assert.Contains(t, err.Error(), "groups")

	unnamedProduct := valid
	unnamedProduct.Products = []ProductRequest{{}}
	assert.ErrorIs(t, unnamedProduct.Validate(), errs.ErrValidation)
}

func TestTermsAgreementRequestValidate(t *testing.T) {
	version := 2
	assert.NoError(t, TermsAgreementRequest{ProductName: "SEND", Version: &version}.Validate())
	assert.ErrorIs(t, TermsAgreementRequest{ProductName: "SEND"}.Validate(), errs.ErrValidation)
	assert.ErrorIs(t, TermsAgreementRequest{Version: &version}.Validate(), errs.ErrValidation)
}
