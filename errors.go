package prreview

import (
	"errors"
	"fmt"
)

// ErrEmptyDiff is returned when a review is requested for blank diff text.
var ErrEmptyDiff = errors.New("diff text is empty")

// ErrEmptyResult is returned when a collaborator answers with an empty body.
var ErrEmptyResult = errors.New("empty result")

// ValidationError rejects a request before any LLM call is made.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ConfigError reports missing or invalid configuration for a collaborator.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in field %q: %s", e.Field, e.Message)
}

// TransportError reports a failed call to an external capability.
type TransportError struct {
	Op         string // e.g. "fetch diff"
	StatusCode int    // 0 when no HTTP response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// LLMCallError reports a failed LLM generation call.
type LLMCallError struct {
	Kind PromptKind
	Err  error
}

func (e *LLMCallError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("LLM call failed: %v", e.Err)
	}
	return fmt.Sprintf("LLM call failed for %s: %v", e.Kind, e.Err)
}

func (e *LLMCallError) Unwrap() error { return e.Err }
