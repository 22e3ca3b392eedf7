package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErr(t *testing.T) {
	err := Err(http.StatusNotFound, "", "panel %s not found", "foo")

	require.Equal(t, http.StatusNotFound, err.Code)
	require.Equal(t, "Not Found", err.Message)
	require.Equal(t, []string{"panel foo not found"}, err.Details)

	err = Err(http.StatusBadRequest, "invalid", 42)
	require.Empty(t, err.Details)
}

func TestErrorSummary(t *testing.T) {
	err := Error{
		Code:    http.StatusBadRequest,
		Message: "invalid settings for gloria",
		Details: []string{"restaurant_key: required", " ", ""},
	}

	require.Equal(t, "invalid settings for gloria: restaurant_key: required", err.Summary())

	err.Details = nil
	require.Equal(t, "invalid settings for gloria", err.Summary())
}
