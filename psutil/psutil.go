// Package psutil reports host resources. Inside a container the cgroup limits
// take precedence over the values of the host.
package psutil

import (
	"context"
	"fmt"
	"io/fs"
	"math"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

var cgroup1Files = []string{
	"cpu/cpu.cfs_quota_us",
	"cpu/cpu.cfs_period_us",
	"memory/memory.limit_in_bytes",
	"memory/memory.usage_in_bytes",
}

var cgroup2Files = []string{
	"cpu.max",
	"memory.max",
	"memory.current",
}

// https://www.kernel.org/doc/html/latest/admin-guide/cgroup-v2.html

type MemoryInfoStat struct {
	Total     uint64 // bytes
	Available uint64 // bytes
	Used      uint64 // bytes
	Limited   bool   // Values are from the cgroup
}

type HostInfoStat struct {
	Hostname        string
	OS              string
	Platform        string
	PlatformVersion string
	KernelArch      string
	Uptime          time.Duration
	Virtualization  string
}

type RuntimeInfoStat struct {
	Version    string
	OS         string
	Arch       string
	NumCPU     int
	GOMAXPROCS int
	Goroutines int
}

type Util interface {
	// CPUCounts returns the number of available cores, either logical or physical.
	CPUCounts(ctx context.Context, logical bool) (float64, error)

	VirtualMemory(ctx context.Context) (*MemoryInfoStat, error)

	Host(ctx context.Context) (*HostInfoStat, error)

	Runtime() RuntimeInfoStat
}

type util struct {
	root fs.FS

	ncpu       float64 // CPUs according to the cgroup limit
	hasCgroup  bool
	cgroupType int
}

// New returns a Util that looks for cgroup files below root, usually /sys/fs/cgroup.
func New(root string) Util {
	u := &util{
		root: os.DirFS(root),
	}

	u.cgroupType = u.detectCgroupVersion()
	if u.cgroupType != 0 {
		u.hasCgroup = true
		u.ncpu = u.cgroupCPULimit(u.cgroupType)
	}

	return u
}

func (u *util) detectCgroupVersion() int {
	for _, file := range cgroup1Files {
		if f, err := u.root.Open(file); err == nil {
			f.Close()
			return 1
		}
	}

	for _, file := range cgroup2Files {
		if f, err := u.root.Open(file); err == nil {
			f.Close()
			return 2
		}
	}

	return 0
}

// cgroupCPULimit returns 0 if there's no limit.
func (u *util) cgroupCPULimit(version int) float64 {
	var quota, period float64

	if version == 1 {
		lines, err := u.readFile("cpu/cpu.cfs_quota_us")
		if err != nil {
			return 0
		}

		quota, err = strconv.ParseFloat(lines[0], 64) // microseconds
		if err != nil || quota <= 0 {
			return 0
		}

		lines, err = u.readFile("cpu/cpu.cfs_period_us")
		if err != nil {
			return 0
		}

		period, err = strconv.ParseFloat(lines[0], 64) // microseconds
		if err != nil {
			return 0
		}
	} else if version == 2 {
		lines, err := u.readFile("cpu.max")
		if err != nil {
			return 0
		}

		// "max 100000" means unlimited
		fields := strings.Fields(lines[0])
		if len(fields) != 2 || fields[0] == "max" {
			return 0
		}

		quota, err = strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return 0
		}

		period, err = strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return 0
		}
	}

	if period <= 0 {
		return 0
	}

	return quota / period
}

func (u *util) CPUCounts(ctx context.Context, logical bool) (float64, error) {
	if u.hasCgroup && u.ncpu > 0 {
		return u.ncpu, nil
	}

	ncpu, err := cpu.CountsWithContext(ctx, logical)
	if err != nil {
		return 0, fmt.Errorf("cpu counts: %w", err)
	}

	return float64(ncpu), nil
}

func (u *util) VirtualMemory(ctx context.Context) (*MemoryInfoStat, error) {
	info, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("virtual memory: %w", err)
	}

	if u.hasCgroup {
		if cginfo, err := u.cgroupVirtualMemory(u.cgroupType); err == nil {
			// Without a limit the cgroup reports a huge number
			if cginfo.Total <= info.Total {
				return cginfo, nil
			}
		}
	}

	return &MemoryInfoStat{
		Total:     info.Total,
		Available: info.Available,
		Used:      info.Used,
	}, nil
}

func (u *util) cgroupVirtualMemory(version int) (*MemoryInfoStat, error) {
	limitFile, usageFile := "memory/memory.limit_in_bytes", "memory/memory.usage_in_bytes"
	if version == 2 {
		limitFile, usageFile = "memory.max", "memory.current"
	}

	lines, err := u.readFile(limitFile)
	if err != nil {
		return nil, err
	}

	total, err := strconv.ParseUint(lines[0], 10, 64)
	if err != nil {
		if version != 2 {
			return nil, err
		}

		// cgroup2 writes "max"
		total = uint64(math.MaxUint64)
	}

	lines, err = u.readFile(usageFile)
	if err != nil {
		return nil, err
	}

	used, err := strconv.ParseUint(lines[0], 10, 64)
	if err != nil {
		return nil, err
	}

	info := &MemoryInfoStat{
		Total:   total,
		Used:    used,
		Limited: true,
	}

	if total > used {
		info.Available = total - used
	}

	return info, nil
}

func (u *util) Host(ctx context.Context) (*HostInfoStat, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("host info: %w", err)
	}

	return &HostInfoStat{
		Hostname:        info.Hostname,
		OS:              info.OS,
		Platform:        info.Platform,
		PlatformVersion: info.PlatformVersion,
		KernelArch:      info.KernelArch,
		Uptime:          time.Duration(info.Uptime) * time.Second,
		Virtualization:  info.VirtualizationSystem,
	}, nil
}

func (u *util) Runtime() RuntimeInfoStat {
	return RuntimeInfoStat{
		Version:    runtime.Version(),
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
		NumCPU:     runtime.NumCPU(),
		GOMAXPROCS: runtime.GOMAXPROCS(0),
		Goroutines: runtime.NumGoroutine(),
	}
}

func (u *util) readFile(path string) ([]string, error) {
	data, err := fs.ReadFile(u.root, path)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(string(data), "\n")

	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}

	return lines, nil
}
