// Package health implements the GET /health contract shared by all three
// services: a DB/MQ dependency check plus a light system
// stats snapshot, grounded on the teacher's getSystemStats (CPU/mem via
// gopsutil) in internal/server/system_handlers.go.
package health

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Checker probes one dependency (the document store or the message bus)
// and reports whether it is reachable.
type Checker interface {
	Ping(ctx context.Context) error
}

// CheckerFunc adapts a plain function (e.g. *docstore.DB.QuickCheck or
// *bus.Bus.Ping) to the Checker interface.
type CheckerFunc func(ctx context.Context) error

// Ping implements Checker.
func (f CheckerFunc) Ping(ctx context.Context) error { return f(ctx) }

// Checks is the per-dependency {db, mq} block.
type Checks struct {
	DB string `json:"db"`
	MQ string `json:"mq"`
}

// Stats is a lightweight resource snapshot, not part of the health
// contract proper but carried alongside it the way the teacher's system handlers
// attach CPU/RAM to status responses.
type Stats struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemPercent float64 `json:"mem_percent"`
}

// Report is the full GET /health response body.
type Report struct {
	Status    string    `json:"status"`
	Checks    Checks    `json:"checks"`
	Stats     Stats     `json:"stats"`
	Timestamp time.Time `json:"timestamp"`
}

const checkTimeout = 3 * time.Second

// Check pings db and mq (either may be nil, e.g. a service with no direct
// bus dependency) and reports "ok"/"degraded" plus a short system stats
// snapshot. It never returns an error: a failed dependency degrades the
// report, it does not crash the process.
func Check(ctx context.Context, db, mq Checker) Report {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	checks := Checks{DB: "ok", MQ: "ok"}
	status := "ok"

	if db != nil {
		if err := db.Ping(ctx); err != nil {
			checks.DB = "unreachable"
			status = "degraded"
		}
	}
	if mq != nil {
		if err := mq.Ping(ctx); err != nil {
			checks.MQ = "unreachable"
			status = "degraded"
		}
	}

	return Report{
		Status:    status,
		Checks:    checks,
		Stats:     systemStats(),
		Timestamp: time.Now(),
	}
}

// systemStats reads a short CPU sample and instantaneous memory usage,
// matching the teacher's 100ms-sample getSystemStats to keep /health fast.
func systemStats() Stats {
	var stats Stats
	if pct, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(pct) > 0 {
		stats.CPUPercent = pct[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		stats.MemPercent = vm.UsedPercent
	}
	return stats
}
