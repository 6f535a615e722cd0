package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// Category classifies a BusinessError.
type Category string

const (
	CategoryConfiguration Category = "ConfigurationException"
	CategorySecurity      Category = "SecurityException"
	CategoryValidation    Category = "ValidationException"
	CategoryUnexpected    Category = "UnexpectedException"
	CategoryBusiness      Category = "BusinessException"
)

// rawTypes names the error kind per category in responses.
var rawTypes = map[Category]string{
	CategoryConfiguration: "ConfigurationBusinessError",
	CategorySecurity:      "SecurityBusinessError",
	CategoryValidation:    "ValidationBusinessError",
	CategoryUnexpected:    "UnexpectedBusinessError",
	CategoryBusiness:      "BusinessError",
}

// BusinessError is the body of every error response.
type BusinessError struct {
	Status       string         `json:"status"`
	Detail       string         `json:"detail"`
	Type         string         `json:"type"`
	Data         map[string]any `json:"data"`
	RecoveryType string         `json:"recoveryType"`
	RawType      string         `json:"rawType"`
	Category     Category       `json:"category,omitempty"`
}

// NewBusinessError creates an error for code in category. RawType
// defaults to the category's error kind.
func NewBusinessError(category Category, code int, detail string) *BusinessError {
	return &BusinessError{
		Status:   strconv.Itoa(code),
		Detail:   detail,
		Data:     map[string]any{},
		RawType:  rawTypes[category],
		Category: category,
	}
}

// UnexpectedError describes an unhandled failure. RawType is the Go
// type of cause.
func UnexpectedError(cause any) *BusinessError {
	e := NewBusinessError(CategoryUnexpected, http.StatusInternalServerError, fmt.Sprint(cause))
	e.RawType = fmt.Sprintf("%T", cause)
	return e
}

func (e *BusinessError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Category, e.Status, e.Detail)
}

// WithData returns e carrying data.
func (e *BusinessError) WithData(data map[string]any) *BusinessError {
	e.Data = data
	return e
}

// WriteError writes e as JSON with HTTP status code.
func WriteError(w http.ResponseWriter, code int, e *BusinessError) {
	if e.Data == nil {
		e.Data = map[string]any{}
	}
	body, err := json.Marshal(e)
	if err != nil {
		http.Error(w, e.Detail, code)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(body)
}
