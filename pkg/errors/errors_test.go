package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapCarriesCodeThroughChain(t *testing.T) {
	err := Wrap("upstream_error", "model call failed", errors.New("status=401"))
	wrapped := fmt.Errorf("analyze: %w", err)

	require.True(t, IsCode(wrapped, "upstream_error"))
	require.Equal(t, "upstream_error", CodeOf(wrapped, "internal_error"))
	require.Equal(t, "internal_error", CodeOf(errors.New("plain"), "internal_error"))
}

func TestMessageOfNeverExposesCause(t *testing.T) {
	cause := errors.New(`status=401 body={"error":{"message":"bad key"}}`)
	err := Wrap("upstream_error", "model call failed", cause)

	require.Equal(t, "model call failed", MessageOf(err, "request failed"))
	require.Equal(t, "request failed", MessageOf(cause, "request failed"))
	require.Equal(t, "request failed", MessageOf(&AppError{Code: "upstream_error", Err: cause}, "request failed"))
}
