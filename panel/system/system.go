// Package system implements the panel with diagnostics of the service itself.
package system

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/quickshop/bothub/console"
	"github.com/quickshop/bothub/event"
	"github.com/quickshop/bothub/panel"
	"github.com/quickshop/bothub/psutil"
	"github.com/quickshop/bothub/settings"

	"github.com/dustin/go-humanize"
)

const ID event.Target = "system"

const storageTestKey = "test_storage"

type Project struct {
	Name        string
	Description string
	Version     string
	Commit      string
	Build       string
	Address     string
}

type Config struct {
	Console  panel.Reporter
	Settings settings.Store
	PSUtil   psutil.Util
	Project  Project

	// Now defaults to time.Now.
	Now func() time.Time
}

type system struct {
	console  panel.Reporter
	settings settings.Store
	psutil   psutil.Util
	project  Project
	now      func() time.Time
}

func New(config Config) panel.Panel {
	s := &system{
		console:  config.Console,
		settings: config.Settings,
		psutil:   config.PSUtil,
		project:  config.Project,
		now:      config.Now,
	}

	if s.now == nil {
		s.now = time.Now
	}

	return s
}

func (s *system) Definition() panel.Definition {
	return panel.Definition{
		ID:    ID,
		Title: "System",
	}
}

func (s *system) Handle(ctx context.Context, a panel.Action) error {
	switch a.Kind {
	case event.KindTestConnection:
		s.testStorage()
	case event.KindFetchData:
		s.systemInfo(ctx)
	case event.KindShowSnippet:
		s.projectInfo()
	default:
		return panel.ErrUnsupported
	}

	return nil
}

// testStorage writes, reads back and removes a value in the settings store.
func (s *system) testStorage() {
	value := "test_value_" + strconv.FormatInt(s.now().UnixNano(), 10)

	if err := s.settings.Set(storageTestKey, value); err != nil {
		s.console.Append(fmt.Sprintf("Settings storage error: %s", err), console.SeverityError)
		return
	}

	retrieved, ok, err := s.settings.Get(storageTestKey)
	if err != nil {
		s.console.Append(fmt.Sprintf("Settings storage error: %s", err), console.SeverityError)
		return
	}

	if err := s.settings.Delete(storageTestKey); err != nil {
		s.console.Append(fmt.Sprintf("Settings storage error: %s", err), console.SeverityError)
		return
	}

	if !ok || retrieved != value {
		s.console.Append("Settings storage: Failed to retrieve data", console.SeverityError)
		return
	}

	s.console.Append("Settings storage: Working correctly", console.SeveritySuccess)
}

func (s *system) systemInfo(ctx context.Context) {
	s.console.Append("=== SYSTEM INFORMATION ===", console.SeverityInfo)

	if h, err := s.psutil.Host(ctx); err != nil {
		s.console.Append(fmt.Sprintf("Host: %s", err), console.SeverityWarning)
	} else {
		s.console.Append(fmt.Sprintf("Host: %s", h.Hostname), console.SeverityInfo)
		s.console.Append(fmt.Sprintf("Platform: %s %s %s (%s)", h.OS, h.Platform, h.PlatformVersion, h.KernelArch), console.SeverityInfo)
		s.console.Append(fmt.Sprintf("Uptime: %s", h.Uptime), console.SeverityInfo)
	}

	if ncpu, err := s.psutil.CPUCounts(ctx, true); err != nil {
		s.console.Append(fmt.Sprintf("CPUs: %s", err), console.SeverityWarning)
	} else {
		s.console.Append(fmt.Sprintf("CPUs: %g", ncpu), console.SeverityInfo)
	}

	if m, err := s.psutil.VirtualMemory(ctx); err != nil {
		s.console.Append(fmt.Sprintf("Memory: %s", err), console.SeverityWarning)
	} else {
		limit := ""
		if m.Limited {
			limit = " (cgroup)"
		}

		s.console.Append(fmt.Sprintf("Memory: %s used of %s%s", humanize.IBytes(m.Used), humanize.IBytes(m.Total), limit), console.SeverityInfo)
	}

	r := s.psutil.Runtime()
	s.console.Append(fmt.Sprintf("Runtime: %s %s/%s, GOMAXPROCS %d, %d goroutines", r.Version, r.OS, r.Arch, r.GOMAXPROCS, r.Goroutines), console.SeverityInfo)

	s.console.Append("=== END SYSTEM INFO ===", console.SeverityInfo)
}

func (s *system) projectInfo() {
	p := s.project

	s.console.Append(fmt.Sprintf("Project: %s", p.Description), console.SeverityInfo)
	s.console.Append(fmt.Sprintf("Version: %s %s (%s)", p.Name, p.Version, p.Commit), console.SeverityInfo)

	if len(p.Build) != 0 {
		s.console.Append(fmt.Sprintf("Build: %s", p.Build), console.SeverityInfo)
	}

	if len(p.Address) != 0 {
		s.console.Append(fmt.Sprintf("Address: %s", p.Address), console.SeverityInfo)
	}
}
