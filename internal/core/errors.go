package core

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is.
var (
	ErrAddressNotFound     = errors.New("no email address found in the prompt")
	ErrGenerationFailed    = errors.New("failed to generate email")
	ErrDeliveryDisabled    = errors.New("email delivery is not configured")
	ErrRecipientNotAllowed = errors.New("recipient domain is not allowed")
	ErrDeliveryFailed      = errors.New("failed to deliver email")
)

// Generation failure reasons
const (
	ReasonProviderError = "provider error"
	ReasonTimeout       = "timeout"
	ReasonCancelled     = "cancelled"
	ReasonEmptyResult   = "empty result"
)

// AddressNotFoundError is returned when the prompt holds no valid address
type AddressNotFoundError struct {
	Prompt string
}

func (e *AddressNotFoundError) Error() string {
	return ErrAddressNotFound.Error()
}

func (e *AddressNotFoundError) Is(target error) bool {
	return target == ErrAddressNotFound
}

// GenerationError is returned when the provider could not produce a usable body
type GenerationError struct {
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", ErrGenerationFailed, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %v", ErrGenerationFailed, e.Reason, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// DeliveryError wraps a transport failure while sending a draft
type DeliveryError struct {
	Recipient string
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s to %s: %v", ErrDeliveryFailed, e.Recipient, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

func (e *DeliveryError) Is(target error) bool {
	return target == ErrDeliveryFailed
}

// Kind returns a short machine-readable name for the error kind of err
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAddressNotFound):
		return "AddressNotFound"
	case errors.Is(err, ErrGenerationFailed):
		return "GenerationFailed"
	case errors.Is(err, ErrDeliveryDisabled):
		return "DeliveryDisabled"
	case errors.Is(err, ErrRecipientNotAllowed):
		return "RecipientNotAllowed"
	case errors.Is(err, ErrDeliveryFailed):
		return "DeliveryFailed"
	default:
		return "Internal"
	}
}
