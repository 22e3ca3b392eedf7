package value

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMustAddressValue(t *testing.T) {
	var x string

	val := NewMustAddress(&x, ":8080")

	require.Equal(t, ":8080", val.String())
	require.Equal(t, nil, val.Validate())
	require.Equal(t, false, val.IsEmpty())

	val.Set("9090")
	require.Equal(t, ":9090", x)

	val.Set("localhost:http")
	require.Error(t, val.Validate())
	require.Equal(t, true, val.IsEmpty())
}

func TestCORSOriginsValue(t *testing.T) {
	var x []string

	val := NewCORSOrigins(&x, []string{"*"}, ",")

	require.Equal(t, "*", val.String())
	require.Equal(t, nil, val.Validate())

	val.Set("https://admin.example.com, https://*.example.com")
	require.Equal(t, []string{"https://admin.example.com", "https://*.example.com"}, x)
	require.Equal(t, nil, val.Validate())

	val.Set("ftp://example.com")
	require.Error(t, val.Validate())
}

func TestURLValue(t *testing.T) {
	var x string

	val := NewURL(&x, "https://api.telegram.org")

	require.Equal(t, nil, val.Validate())

	val.Set("")
	require.Equal(t, nil, val.Validate())
	require.Equal(t, true, val.IsEmpty())

	val.Set("api.telegram.org")
	require.Error(t, val.Validate())

	val.Set("ws://api.telegram.org")
	require.Error(t, val.Validate())
}
