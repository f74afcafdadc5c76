package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alnifu/orgsync-web-sub000/model"
)

func TestValidateFormResponsesRequired(t *testing.T) {
	fields := []model.FormField{
		{Type: model.FieldTypeText, Question: "Name", Required: true},
		{Type: model.FieldTypeTextArea, Question: "Comments", Required: false},
	}

	err := ValidateFormResponses(fields, map[string]string{"Comments": "all good"})
	require.NotNil(t, err)
	require.Equal(t, "this field is required", err.Fields["Name"])
	require.NotContains(t, err.Fields, "Comments")
}

func TestValidateFormResponsesWhitespaceIsEmpty(t *testing.T) {
	fields := []model.FormField{
		{Type: model.FieldTypeText, Question: "Name", Required: true},
	}

	err := ValidateFormResponses(fields, map[string]string{"Name": "   "})
	require.NotNil(t, err)
	require.Contains(t, err.Fields, "Name")
}

func TestValidateFormResponsesEmail(t *testing.T) {
	fields := []model.FormField{
		{Type: model.FieldTypeEmail, Question: "Your email", Required: true},
	}

	err := ValidateFormResponses(fields, map[string]string{"Your email": "not-an-email"})
	require.NotNil(t, err)
	require.Contains(t, err.Fields, "Your email")

	err = ValidateFormResponses(fields, map[string]string{"Your email": "sam@campus.edu"})
	require.Nil(t, err)
}

func TestValidateFormResponsesNumber(t *testing.T) {
	fields := []model.FormField{
		{Type: model.FieldTypeNumber, Question: "Year level", Required: true},
	}

	err := ValidateFormResponses(fields, map[string]string{"Year level": "third"})
	require.NotNil(t, err)
	require.Contains(t, err.Fields, "Year level")

	err = ValidateFormResponses(fields, map[string]string{"Year level": "3"})
	require.Nil(t, err)
}

func TestValidateFormResponsesCollectsAllFailures(t *testing.T) {
	fields := []model.FormField{
		{Type: model.FieldTypeText, Question: "Name", Required: true},
		{Type: model.FieldTypeEmail, Question: "Your email", Required: true},
	}

	err := ValidateFormResponses(fields, map[string]string{"Your email": "nope"})
	require.NotNil(t, err)
	require.Len(t, err.Fields, 2)
}
