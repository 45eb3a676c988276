package placeholder_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Ubermelon/internal/cart"
	"Ubermelon/internal/placeholder"
)

func TestLogin_NotImplemented(t *testing.T) {
	err := placeholder.Login(context.Background(), placeholder.Credentials{Email: "a@b.c", Password: "pw"})
	require.ErrorIs(t, err, placeholder.ErrNotImplemented)

	f, ok := placeholder.FeatureOf(err)
	require.True(t, ok)
	assert.Equal(t, placeholder.FeatureLogin, f)
}

func TestCheckout_NotImplemented(t *testing.T) {
	err := placeholder.Checkout(context.Background(), cart.Summary{TotalCents: 600})
	require.ErrorIs(t, err, placeholder.ErrNotImplemented)

	f, ok := placeholder.FeatureOf(err)
	require.True(t, ok)
	assert.Equal(t, placeholder.FeatureCheckout, f)
	assert.Equal(t, "checkout: not implemented", err.Error())
}

func TestFeatureOf_OtherError(t *testing.T) {
	_, ok := placeholder.FeatureOf(errors.New("boom"))
	assert.False(t, ok)
}
