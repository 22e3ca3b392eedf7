package vars

import (
	"testing"

	"github.com/quickshop/bothub/config/value"

	"github.com/stretchr/testify/require"
)

func TestVars(t *testing.T) {
	v1 := Variables{}

	s := ""

	v1.Register(value.NewString(&s, "foobar"), "string", "", nil, "a string", false, false)

	require.Equal(t, "foobar", s)
	x, _ := v1.Get("string")
	require.Equal(t, "foobar", x)

	v1.Set("string", "foobaz")

	require.Equal(t, "foobaz", s)
	x, _ = v1.Get("string")
	require.Equal(t, "foobaz", x)

	v1.SetDefault("string")

	require.Equal(t, "foobar", s)

	_, err := v1.Get("unknown")
	require.Error(t, err)
	require.Error(t, v1.Set("unknown", "x"))
}

func TestMerge(t *testing.T) {
	v1 := Variables{}

	token := ""
	level := ""

	v1.Register(value.NewString(&token, ""), "telegram.url", "BOTHUB_TELEGRAM_URL", nil, "", false, false)
	v1.Register(value.NewLogLevel(&level, "info"), "log.level", "BOTHUB_LOG_LEVEL", []string{"BOTHUB_LOGLEVEL"}, "", false, false)

	t.Setenv("BOTHUB_TELEGRAM_URL", "http://localhost:8081")
	t.Setenv("BOTHUB_LOGLEVEL", "debug")

	v1.Merge()

	require.Equal(t, "http://localhost:8081", token)
	require.Equal(t, "debug", level)
	require.True(t, v1.IsMerged("telegram.url"))
	require.True(t, v1.IsMerged("log.level"))
	require.Equal(t, []string{"telegram.url", "log.level"}, v1.Overrides())

	warnings := []string{}
	v1.Messages(func(l string, v Variable, message string) {
		if l == "warn" {
			warnings = append(warnings, v.Name+": "+message)
		}
	})

	require.Equal(t, []string{"log.level: deprecated name BOTHUB_LOGLEVEL, please use BOTHUB_LOG_LEVEL"}, warnings)
	require.False(t, v1.HasErrors())
}

func TestMergeInvalid(t *testing.T) {
	v1 := Variables{}

	level := ""
	v1.Register(value.NewLogLevel(&level, "info"), "log.level", "BOTHUB_LOG_LEVEL", nil, "", false, false)

	t.Setenv("BOTHUB_LOG_LEVEL", "verbose")

	v1.Merge()

	require.Equal(t, "info", level)
	require.True(t, v1.HasErrors())
}

func TestValidate(t *testing.T) {
	v1 := Variables{}

	id := ""
	secret := "123:abc"

	v1.Register(value.NewString(&id, ""), "id", "", nil, "", true, false)
	v1.Register(value.NewString(&secret, "123:abc"), "secret", "", nil, "", false, true)

	v1.Validate()

	require.True(t, v1.HasErrors())

	values := map[string]string{}
	v1.Messages(func(l string, v Variable, message string) {
		values[v.Name] = v.Value
	})

	require.Equal(t, "***", values["secret"])

	v1.ResetLogs()
	require.False(t, v1.HasErrors())

	list := v1.List()
	require.Len(t, list, 2)
	require.True(t, list[0].Required)
}
