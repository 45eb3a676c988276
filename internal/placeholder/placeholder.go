// Package placeholder holds the storefront features that are not built yet.
// Each call reports ErrNotImplemented instead of pretending to succeed.
package placeholder

import (
	"context"
	"errors"

	"Ubermelon/internal/cart"
)

var ErrNotImplemented = errors.New("not implemented")

type Feature string

const (
	FeatureLogin    Feature = "login"
	FeatureCheckout Feature = "checkout"
)

type Error struct {
	Feature Feature
}

func (e *Error) Error() string { return string(e.Feature) + ": " + ErrNotImplemented.Error() }

func (e *Error) Is(target error) bool { return target == ErrNotImplemented }

type Credentials struct {
	Email    string
	Password string
}

// Login would look the customer up by email and compare passwords.
func Login(_ context.Context, _ Credentials) error {
	return &Error{Feature: FeatureLogin}
}

// Checkout would charge for and ship the summarized cart.
func Checkout(_ context.Context, _ cart.Summary) error {
	return &Error{Feature: FeatureCheckout}
}

// FeatureOf reports which feature produced err, if any.
func FeatureOf(err error) (Feature, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Feature, true
	}
	return "", false
}
