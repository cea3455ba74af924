package validator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type grantInput struct {
	TargetId string `json:"target_id" validate:"required,max=8"`
	Action   string `json:"action" validate:"required,oneof=accept deny"`
}

func TestValidate(t *testing.T) {
	v := NewValidator()

	errs, ok := v.Validate(grantInput{TargetId: "u2", Action: "accept"})
	assert.True(t, ok)
	assert.Empty(t, errs)

	errs, ok = v.Validate(grantInput{TargetId: "", Action: "maybe"})
	require.False(t, ok)
	require.Len(t, errs, 2)
	assert.Equal(t, "target_id", errs[0].Field)
	assert.Equal(t, "REQUIRED", errs[0].Code)
	assert.Equal(t, "action", errs[1].Field)
	assert.Equal(t, "ONEOF", errs[1].Code)
}

func TestValidateStruct(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.ValidateStruct(json.RawMessage(`{}`)))
	assert.NoError(t, v.ValidateStruct(&grantInput{TargetId: "u2", Action: "deny"}))

	err := v.ValidateStruct(grantInput{TargetId: "too-long-id", Action: "deny"})
	var validationErrs ValidationErrors
	require.ErrorAs(t, err, &validationErrs)
	assert.Equal(t, "MAX", validationErrs[0].Code)
}
