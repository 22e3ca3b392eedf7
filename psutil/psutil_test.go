package psutil

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func fixture(t *testing.T, files map[string]string) string {
	root := t.TempDir()

	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	return root
}

func getUtil(root string) *util {
	return New(root).(*util)
}

func TestCgroup2Limited(t *testing.T) {
	u := getUtil(fixture(t, map[string]string{
		"cpu.max":        "150000 100000\n",
		"memory.max":     "524288000\n",
		"memory.current": "43745280\n",
	}))

	require.True(t, u.hasCgroup)
	require.Equal(t, 2, u.cgroupType)
	require.Equal(t, 1.5, u.ncpu)

	ncpu, err := u.CPUCounts(context.Background(), true)
	require.NoError(t, err)
	require.Equal(t, 1.5, ncpu)

	mem, err := u.cgroupVirtualMemory(2)
	require.NoError(t, err)
	require.True(t, mem.Limited)
	require.Equal(t, uint64(524288000), mem.Total)
	require.Equal(t, uint64(43745280), mem.Used)
	require.Equal(t, uint64(524288000-43745280), mem.Available)
}

func TestCgroup2(t *testing.T) {
	u := getUtil(fixture(t, map[string]string{
		"cpu.max":        "max 100000\n",
		"memory.max":     "max\n",
		"memory.current": "41603072\n",
	}))

	require.True(t, u.hasCgroup)
	require.Equal(t, 2, u.cgroupType)
	require.Equal(t, float64(0), u.ncpu)

	mem, err := u.cgroupVirtualMemory(2)
	require.NoError(t, err)
	require.Equal(t, uint64(math.MaxUint64), mem.Total)
	require.Equal(t, uint64(41603072), mem.Used)
}

func TestCgroup1Limited(t *testing.T) {
	u := getUtil(fixture(t, map[string]string{
		"cpu/cpu.cfs_quota_us":         "30000\n",
		"cpu/cpu.cfs_period_us":        "100000\n",
		"memory/memory.limit_in_bytes": "536870912\n",
		"memory/memory.usage_in_bytes": "34197504\n",
	}))

	require.True(t, u.hasCgroup)
	require.Equal(t, 1, u.cgroupType)
	require.InDelta(t, 0.3, u.ncpu, 0.0001)

	mem, err := u.cgroupVirtualMemory(1)
	require.NoError(t, err)
	require.Equal(t, uint64(536870912), mem.Total)
	require.Equal(t, uint64(34197504), mem.Used)
}

func TestCgroup1Unlimited(t *testing.T) {
	u := getUtil(fixture(t, map[string]string{
		"cpu/cpu.cfs_quota_us":  "-1\n",
		"cpu/cpu.cfs_period_us": "100000\n",
	}))

	require.True(t, u.hasCgroup)
	require.Equal(t, 1, u.cgroupType)
	require.Equal(t, float64(0), u.ncpu)
}

func TestNoCgroup(t *testing.T) {
	u := getUtil(filepath.Join(t.TempDir(), "missing"))

	require.False(t, u.hasCgroup)
	require.Equal(t, 0, u.cgroupType)
}

func TestRuntime(t *testing.T) {
	u := New(t.TempDir())

	info := u.Runtime()
	require.NotEmpty(t, info.Version)
	require.Greater(t, info.NumCPU, 0)
	require.Greater(t, info.Goroutines, 0)
}
