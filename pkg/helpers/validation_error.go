package helpers

import (
	"encoding/json"
	"strings"
)

// ValidationErrorData holds structured validation error information
type ValidationErrorData struct {
	Fields map[string]string `json:"fields"`
}

// EncodeValidationError encodes field validation errors into a JSON string
// so they survive the error-value boundary between services and handlers.
func EncodeValidationError(fields map[string]string) string {
	if len(fields) == 0 {
		return ""
	}

	data := ValidationErrorData{
		Fields: fields,
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		// Fallback: return first error message
		for _, msg := range fields {
			return msg
		}
		return "validation error"
	}

	return string(jsonData)
}

// DecodeValidationError decodes a JSON string into field validation errors.
// The payload may sit at the tail of a wrapped error message. Returns the
// fields map and a boolean indicating if decoding was successful.
func DecodeValidationError(errorMsg string) (map[string]string, bool) {
	payload := errorMsg
	if idx := strings.Index(errorMsg, "{"); idx > 0 {
		payload = errorMsg[idx:]
	}

	var data ValidationErrorData
	if err := json.Unmarshal([]byte(payload), &data); err == nil {
		if len(data.Fields) > 0 {
			return data.Fields, true
		}
	}

	// If not JSON, check if it's a simple error message that might map to a field
	errorMsgLower := strings.ToLower(errorMsg)

	fieldMappings := map[string][]string{
		"skill":       {"skill"},
		"credits":     {"credit", "amount", "balance"},
		"date_time":   {"date", "time", "schedule"},
		"email":       {"email", "e-mail"},
		"name":        {"name", "username"},
		"session_id":  {"session"},
		"payment_ref": {"payment reference", "payment_ref"},
	}

	for field, keywords := range fieldMappings {
		for _, keyword := range keywords {
			if strings.Contains(errorMsgLower, keyword) {
				return map[string]string{field: errorMsg}, true
			}
		}
	}

	return nil, false
}

// CreateValidationError creates a validation error response from field errors
func CreateValidationError(field string, message string) map[string]string {
	return map[string]string{field: message}
}

// MergeValidationErrors merges multiple validation error maps
func MergeValidationErrors(errors ...map[string]string) map[string]string {
	result := make(map[string]string)
	for _, errs := range errors {
		for field, msg := range errs {
			result[field] = msg
		}
	}
	return result
}
