package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest        = errors.New("invalid request")
	ErrInvalidTier           = errors.New("invalid tier selected")
	ErrMissingLicensePlate   = errors.New("license plate is required")
	ErrProviderNotConfigured = errors.New("payment provider is not configured")
	ErrProviderError         = errors.New("payment provider error")
	ErrCaptureFailed         = errors.New("payment capture failed")
	ErrInvalidSignature      = errors.New("invalid webhook signature")
)

// ProviderError wraps a failed call to a payment provider.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func (e *ProviderError) Is(target error) bool {
	return target == ErrProviderError
}

// CaptureFailedError reports a capture the provider answered with a non-completed status.
type CaptureFailedError struct {
	Status string
}

func (e *CaptureFailedError) Error() string {
	return fmt.Sprintf("payment capture failed: status=%s", e.Status)
}

func (e *CaptureFailedError) Is(target error) bool {
	return target == ErrCaptureFailed
}
