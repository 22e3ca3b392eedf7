package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type request struct {
	Message string `json:"message" validate:"required"`
	Ignored string `json:"-"`
}

func TestValidate(t *testing.T) {
	v := New()

	require.NoError(t, v.Validate(&request{Message: "hello"}))

	err := v.Validate(&request{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "'message'")
}
