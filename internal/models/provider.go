package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrorKind classifies a provider failure for the fallback dispatcher.
type ErrorKind string

const (
	// ErrorKindTransient means the next model in the pool should be tried
	// (rate limit, unknown model).
	ErrorKindTransient ErrorKind = "transient"
	// ErrorKindFatal means the whole dispatch must abort immediately.
	ErrorKindFatal ErrorKind = "fatal"
)

// ProviderError is a classified failure from the generative-AI provider.
// The transient/fatal decision is made once at the client boundary rather
// than re-parsed from error text by every caller.
type ProviderError struct {
	Model            string
	StatusCode       int // provider status, 0 when unknown (e.g. network failure)
	Kind             ErrorKind
	RetryHintSeconds int // best-effort hint parsed from the provider message, 0 when absent
	Message          string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error (model: %s, status: %d): %s", e.Model, e.StatusCode, e.Message)
}

// Transient reports whether the error justifies falling back to the next model.
func (e *ProviderError) Transient() bool {
	return e.Kind == ErrorKindTransient
}

// CodeLabel is the short status tag used in diagnostic output.
func (e *ProviderError) CodeLabel() string {
	if e.StatusCode > 0 {
		return strconv.Itoa(e.StatusCode)
	}
	return "ERR"
}

// retryHintPattern loosely matches "retry ... 30s", "retry in 30 seconds" etc.
var retryHintPattern = regexp.MustCompile(`(?i)retry.*?(\d+)\s*s`)

// ParseRetryHint extracts a suggested wait in seconds from free-form provider
// error text. Returns 0 when no hint is found.
func ParseRetryHint(text string) int {
	m := retryHintPattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// ModelAttempt records one failed candidate during a dispatch.
type ModelAttempt struct {
	Model string
	Err   *ProviderError
}

// ExhaustedError reports that every candidate model failed with a transient
// error. It carries one attempt per model in pool order.
type ExhaustedError struct {
	Attempts []ModelAttempt
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all %d models exhausted", len(e.Attempts))
}

// RetryHintSeconds returns the largest retry hint seen across attempts.
func (e *ExhaustedError) RetryHintSeconds() int {
	hint := 0
	for _, a := range e.Attempts {
		if a.Err != nil && a.Err.RetryHintSeconds > hint {
			hint = a.Err.RetryHintSeconds
		}
	}
	return hint
}

// Report renders the user-visible diagnostic: one line per attempted model
// with its classified code, plus a suggested wait when any attempt hinted one.
func (e *ExhaustedError) Report() string {
	var sb strings.Builder
	sb.WriteString("All models failed. Per-model errors:\n")
	for _, a := range e.Attempts {
		label := "ERR"
		if a.Err != nil {
			label = a.Err.CodeLabel()
		}
		fmt.Fprintf(&sb, "\n  [%s]  %s", label, a.Model)
	}
	if hint := e.RetryHintSeconds(); hint > 0 {
		fmt.Fprintf(&sb, "\n\nRetry in ~%d seconds.", hint)
	}
	return sb.String()
}
