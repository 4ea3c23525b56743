package omie

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingCredentials is returned when the app key or secret is not configured.
var ErrMissingCredentials = errors.New("omie: app_key and app_secret must be set")

// noRecordsCode is the fault code Omie uses for an empty page.
const noRecordsCode = "5113"

// FaultError is an application-level error reported by Omie.
type FaultError struct {
	Method  string
	Code    string
	Message string
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("omie %s fault %s: %s", e.Method, e.Code, e.Message)
}

// NoRecords reports whether the fault only signals an empty result.
func (e *FaultError) NoRecords() bool {
	return e.Code == noRecordsCode
}

// StatusError is returned for non-2xx responses without a fault body.
type StatusError struct {
	Method     string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("omie %s: unexpected status %d", e.Method, e.StatusCode)
}

// faultCode extracts the numeric part of codes like "SOAP-ENV:Client-5113".
func faultCode(code string) string {
	if i := strings.LastIndex(code, "-"); i >= 0 {
		return code[i+1:]
	}
	return code
}
