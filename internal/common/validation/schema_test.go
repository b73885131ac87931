package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helpers
// ==========================

func contactSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"name", "email"},
		"properties": map[string]interface{}{
			"name":  map[string]interface{}{"type": "string", "minLength": 1},
			"email": map[string]interface{}{"type": "string", "format": "email"},
			"age":   map[string]interface{}{"type": "number", "minimum": 0},
		},
	}
}

// ==========================
// ValidateDocument
// ==========================

func TestValidateDocument_ValidDocument(t *testing.T) {
	result, err := ValidateDocument(contactSchema(), map[string]interface{}{
		"name":  "Mario Rossi",
		"email": "mario@example.com",
	})
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidateDocument_MissingRequiredAttributedToField(t *testing.T) {
	result, err := ValidateDocument(contactSchema(), map[string]interface{}{
		"name": "Mario Rossi",
	})
	require.NoError(t, err)
	require.False(t, result.Valid)

	// The violation names the missing field, never "(root)".
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "email", result.Errors[0].Field)
	assert.Equal(t, "REQUIRED", result.Errors[0].Code)
}

func TestValidateDocument_OneErrorPerViolatedRule(t *testing.T) {
	result, err := ValidateDocument(contactSchema(), map[string]interface{}{
		"email": "not-an-email",
		"age":   float64(-3),
	})
	require.NoError(t, err)
	require.False(t, result.Valid)

	assert.True(t, result.HasErrors("name"))
	assert.True(t, result.HasErrors("email"))
	assert.True(t, result.HasErrors("age"))
}

// ==========================
// Result Helpers
// ==========================

func TestValidationResult_AppendRederivesValid(t *testing.T) {
	result, err := ValidateDocument(contactSchema(), map[string]interface{}{
		"name":  "Mario Rossi",
		"email": "mario@example.com",
	})
	require.NoError(t, err)
	require.True(t, result.Valid)

	result.Append(ValidationError{
		Field:   "age",
		Message: "age must match the document year",
		Code:    "AGE_MISMATCH",
	})

	assert.False(t, result.Valid)
	require.Len(t, result.GetErrorsForField("age"), 1)
	assert.Equal(t, "AGE_MISMATCH", result.Errors[0].Code)
}

func TestValidationResult_GetErrorMessagesIncludesField(t *testing.T) {
	result := &ValidationResult{}
	result.Append(ValidationError{Field: "email", Message: "invalid format"})

	messages := result.GetErrorMessages()
	require.Len(t, messages, 1)
	assert.Equal(t, "email: invalid format", messages[0])
}
