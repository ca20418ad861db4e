package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrIntegration means a backend answered success but the payload could
	// not be parsed, or was empty. Never defaulted away.
	ErrIntegration = errors.New("errs: integration failure")

	// ErrMissingProtocolField means a backend response violates a documented
	// protocol invariant. A contract break, not a user-correctable condition.
	ErrMissingProtocolField = errors.New("errs: missing protocol field")

	ErrUnavailable = errors.New("errs: backend unavailable")
	ErrTimeout     = errors.New("errs: backend timeout")

	// ErrRiskChallengeDegraded marks a failure to attach the optional risk
	// challenge. Absorbed by the orchestrator, never surfaced to callers.
	ErrRiskChallengeDegraded = errors.New("errs: risk challenge degraded")

	ErrNotFound = errors.New("errs: not found")
	ErrInvalid  = errors.New("errs: invalid")
)

func IsIntegration(err error) bool          { return errors.Is(err, ErrIntegration) }
func IsMissingProtocolField(err error) bool { return errors.Is(err, ErrMissingProtocolField) }
func IsUnavailable(err error) bool          { return errors.Is(err, ErrUnavailable) }
func IsTimeout(err error) bool              { return errors.Is(err, ErrTimeout) }
func IsNotFound(err error) bool             { return errors.Is(err, ErrNotFound) }
func IsInvalid(err error) bool              { return errors.Is(err, ErrInvalid) }

// Transient reports whether err is worth retrying at all.
func Transient(err error) bool {
	return IsUnavailable(err) || IsTimeout(err)
}

func Integration(service, detail string) error {
	return fmt.Errorf("%s: %s: %w", service, detail, ErrIntegration)
}

func MissingField(service, field string) error {
	return fmt.Errorf("%s: missing %s: %w", service, field, ErrMissingProtocolField)
}

// BackendRejection is a structured 4xx from a backend, carried verbatim so the
// caller can decide whether the code/message is user-facing.
type BackendRejection struct {
	Service string
	Code    string
	Message string
}

func (e *BackendRejection) Error() string {
	return fmt.Sprintf("%s rejected request: code=%s message=%s", e.Service, e.Code, e.Message)
}

func AsBackendRejection(err error) (*BackendRejection, bool) {
	var br *BackendRejection
	if errors.As(err, &br) {
		return br, true
	}
	return nil, false
}
