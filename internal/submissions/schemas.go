// Package submissions validates and persists the three intake forms.
package submissions

import (
	"fmt"

	"github.com/Antoniofe-cpu/tempus-concierge/internal/common/validation"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/models"
)

// Schemas are plain Go maps fed to gojsonschema. One document per form
// kind; cross-field rules that JSON Schema cannot express cleanly are
// coded in validateCrossField.

var repairSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"watchBrand", "watchModel", "issueDescription", "serviceType", "name", "email"},
	"properties": map[string]interface{}{
		"watchBrand":       map[string]interface{}{"type": "string", "minLength": 1, "maxLength": 100},
		"watchModel":       map[string]interface{}{"type": "string", "minLength": 1, "maxLength": 100},
		"serialNumber":     map[string]interface{}{"type": "string", "maxLength": 100},
		"issueDescription": map[string]interface{}{"type": "string", "minLength": 10, "maxLength": 5000},
		"serviceType":      map[string]interface{}{"type": "string", "minLength": 1, "maxLength": 100},
		"name":             map[string]interface{}{"type": "string", "minLength": 1, "maxLength": 200},
		"email":            map[string]interface{}{"type": "string", "format": "email"},
		"phone":            map[string]interface{}{"type": "string", "maxLength": 40},
	},
}

var requestSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"watchType", "budgetMin", "budgetMax", "name", "email"},
	"properties": map[string]interface{}{
		"watchType":       map[string]interface{}{"type": "string", "minLength": 1, "maxLength": 100},
		"brandPreference": map[string]interface{}{"type": "string", "maxLength": 100},
		"budgetMin":       map[string]interface{}{"type": "number", "minimum": 0},
		"budgetMax":       map[string]interface{}{"type": "number", "minimum": 0},
		"notes":           map[string]interface{}{"type": "string", "maxLength": 5000},
		"name":            map[string]interface{}{"type": "string", "minLength": 1, "maxLength": 200},
		"email":           map[string]interface{}{"type": "string", "format": "email"},
	},
}

var sellSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"watchBrand", "watchModel", "condition", "desiredPrice", "name", "email"},
	"properties": map[string]interface{}{
		"watchBrand":   map[string]interface{}{"type": "string", "minLength": 1, "maxLength": 100},
		"watchModel":   map[string]interface{}{"type": "string", "minLength": 1, "maxLength": 100},
		"year":         map[string]interface{}{"type": "integer", "minimum": 1900, "maximum": 2100},
		"condition":    map[string]interface{}{"type": "string", "minLength": 1, "maxLength": 100},
		"desiredPrice": map[string]interface{}{"type": "number", "minimum": 0},
		"hasBox":       map[string]interface{}{"type": "boolean"},
		"hasPapers":    map[string]interface{}{"type": "boolean"},
		"description":  map[string]interface{}{"type": "string", "maxLength": 5000},
		"name":         map[string]interface{}{"type": "string", "minLength": 1, "maxLength": 200},
		"email":        map[string]interface{}{"type": "string", "format": "email"},
		"phone":        map[string]interface{}{"type": "string", "maxLength": 40},
	},
}

func schemaFor(kind models.FormKind) map[string]interface{} {
	switch kind {
	case models.KindRepairForm:
		return repairSchema
	case models.KindRequestForm:
		return requestSchema
	case models.KindSellForm:
		return sellSchema
	default:
		return nil
	}
}

// Validate checks data against the kind's schema plus the coded
// cross-field rules. Every violated rule yields its own error entry.
func Validate(kind models.FormKind, data map[string]interface{}) (*validation.ValidationResult, error) {
	schemaMap := schemaFor(kind)
	if schemaMap == nil {
		return nil, fmt.Errorf("no schema for kind %q", kind)
	}

	result, err := validation.ValidateDocument(schemaMap, data)
	if err != nil {
		return nil, err
	}

	result.Append(validateCrossField(kind, data)...)

	return result, nil
}

// validateCrossField holds rules that relate two fields to each other.
func validateCrossField(kind models.FormKind, data map[string]interface{}) []validation.ValidationError {
	var errs []validation.ValidationError

	if kind == models.KindRequestForm {
		min, okMin := toFloat(data["budgetMin"])
		max, okMax := toFloat(data["budgetMax"])
		if okMin && okMax && max < min {
			errs = append(errs, validation.ValidationError{
				Field:   "budgetMax",
				Message: "budgetMax must be greater than or equal to budgetMin",
				Code:    "BUDGET_RANGE_INVERTED",
			})
		}
	}

	return errs
}

// FieldErrors flattens a validation result into the per-field error map
// carried in the submission-rejected response.
func FieldErrors(result *validation.ValidationResult) map[string]interface{} {
	fields := make(map[string]interface{}, len(result.Errors))
	for _, e := range result.Errors {
		existing, _ := fields[e.Field].([]string)
		fields[e.Field] = append(existing, e.Message)
	}
	return fields
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
