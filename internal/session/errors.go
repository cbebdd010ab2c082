package session

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a client-side failure. All kinds are recoverable.
type Kind int

const (
	// KindTransport covers unreachable servers, timeouts and unexpected responses.
	KindTransport Kind = iota
	// KindValidation is detected locally and never reaches the network.
	KindValidation
	// KindAuthorization is an expired session or an insufficient balance.
	KindAuthorization
	// KindEmptyCode is a blank coupon code, rejected before any call.
	KindEmptyCode
	KindInvalidCode
	KindAlreadyRedeemed
	KindExpired
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindEmptyCode:
		return "empty_code"
	case KindInvalidCode:
		return "invalid_code"
	case KindAlreadyRedeemed:
		return "already_redeemed"
	case KindExpired:
		return "expired"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

var (
	// ErrGenerationInFlight is returned by Generate while a request is outstanding.
	ErrGenerationInFlight = errors.New("a generation request is already in flight")

	// ErrWrongState is returned when an action does not apply to the wizard's current state.
	ErrWrongState = errors.New("action not allowed in the current wizard state")

	// ErrCreationNotFound is returned when a replay names an unknown creation.
	ErrCreationNotFound = errors.New("creation not found")
)

// Error is a classified failure carrying a message fit for display.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds an *Error of the given kind.
func NewError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf reports the kind of err. Unclassified errors count as transport failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindTransport
}

// IsKind reports whether err is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// IsValidation reports whether err was raised locally before any network call.
func IsValidation(err error) bool {
	var e *Error
	return errors.As(err, &e) && (e.Kind == KindValidation || e.Kind == KindEmptyCode)
}

// Notice returns the message to show the user for err.
func Notice(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "the request timed out, please try again"
	}
	return "something went wrong, please try again"
}

// classify turns a boundary failure into an *Error, treating anything
// unclassified (timeouts included) as a transport failure.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: KindTransport, Message: Notice(err), Err: err}
}
