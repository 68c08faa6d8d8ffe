package utils

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Message)
	}
	return strings.Join(messages, "; ")
}

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9 ]{8,16}$`)
	clockRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

// Validator collects field errors for form-style payloads.
type Validator struct {
	errs ValidationErrors
}

// Required records an error when value is blank.
func (v *Validator) Required(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, fmt.Sprintf("%s is required", field))
	}
}

// OneOf records an error when value is not one of allowed.
func (v *Validator) OneOf(field, value string, allowed ...string) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v.Add(field, fmt.Sprintf("%s must be one of: %s", field, strings.Join(allowed, ", ")))
}

// Positive records an error when value is not greater than zero.
func (v *Validator) Positive(field string, value float64) {
	if value <= 0 {
		v.Add(field, fmt.Sprintf("%s must be greater than 0", field))
	}
}

// NonNegative records an error when value is below zero.
func (v *Validator) NonNegative(field string, value int) {
	if value < 0 {
		v.Add(field, fmt.Sprintf("%s cannot be negative", field))
	}
}

// Email records an error when a non-empty value is not an email address.
func (v *Validator) Email(field, value string) {
	if value != "" && !IsValidEmail(value) {
		v.Add(field, fmt.Sprintf("%s must be a valid email address", field))
	}
}

// Phone records an error when a non-empty value is not a phone number.
func (v *Validator) Phone(field, value string) {
	if value != "" && !IsPhoneNumber(value) {
		v.Add(field, fmt.Sprintf("%s must be a valid phone number", field))
	}
}

// Clock records an error when value is not HH:MM.
func (v *Validator) Clock(field, value string) {
	if !clockRegex.MatchString(value) {
		v.Add(field, fmt.Sprintf("%s must use the HH:MM format", field))
	}
}

// Add records a field error.
func (v *Validator) Add(field, message string) {
	v.errs = append(v.errs, ValidationError{Field: field, Message: message})
}

// Err returns the collected errors, or nil.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return v.errs
}

// IsValidEmail validates email format
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(strings.TrimSpace(email))
}

// IsPhoneNumber checks if a string is a valid phone number
func IsPhoneNumber(phone string) bool {
	return phoneRegex.MatchString(strings.TrimSpace(phone))
}
