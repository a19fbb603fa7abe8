// Package hostinfo reads CPU, memory, disk and uptime figures for the
// machine the API runs on.
package hostinfo

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/prometheus/procfs"
)

type CPU struct {
	Cores        int     `json:"cores"`
	UsagePercent float64 `json:"usagePercent"`
	Load1        float64 `json:"load1"`
	Load5        float64 `json:"load5"`
	Load15       float64 `json:"load15"`
}

type Memory struct {
	TotalBytes     uint64  `json:"totalBytes"`
	UsedBytes      uint64  `json:"usedBytes"`
	AvailableBytes uint64  `json:"availableBytes"`
	UsedPercent    float64 `json:"usedPercent"`
}

type Disk struct {
	Path        string  `json:"path"`
	TotalBytes  uint64  `json:"totalBytes"`
	UsedBytes   uint64  `json:"usedBytes"`
	FreeBytes   uint64  `json:"freeBytes"`
	UsedPercent float64 `json:"usedPercent"`
}

type Snapshot struct {
	Hostname      string    `json:"hostname"`
	OS            string    `json:"os"`
	CPU           CPU       `json:"cpu"`
	Memory        Memory    `json:"memory"`
	Disk          Disk      `json:"disk"`
	UptimeSeconds int64     `json:"uptimeSeconds"`
	CollectedAt   time.Time `json:"collectedAt"`
}

type Reader interface {
	Read(ctx context.Context) (Snapshot, error)
}

// ProcReader reads /proc through procfs. Figures it cannot read stay zero.
type ProcReader struct {
	DiskPath string
}

func NewProcReader() *ProcReader {
	return &ProcReader{DiskPath: "/"}
}

func (r *ProcReader) Read(_ context.Context) (Snapshot, error) {
	snap := Snapshot{OS: runtime.GOOS, CollectedAt: time.Now().UTC()}
	snap.Hostname, _ = os.Hostname()
	snap.CPU.Cores = runtime.NumCPU()

	disk, err := diskUsage(r.DiskPath)
	if err == nil {
		snap.Disk = disk
	}

	fs, err := procfs.NewDefaultFS()
	if err != nil {
		return snap, nil
	}

	if stat, err := fs.Stat(); err == nil {
		snap.CPU.UsagePercent = busyPercent(stat.CPUTotal)
		if n := len(stat.CPU); n > 0 {
			snap.CPU.Cores = n
		}
		if stat.BootTime > 0 {
			snap.UptimeSeconds = time.Now().Unix() - int64(stat.BootTime)
		}
	}
	if load, err := fs.LoadAvg(); err == nil {
		snap.CPU.Load1, snap.CPU.Load5, snap.CPU.Load15 = load.Load1, load.Load5, load.Load15
	}
	if mem, err := fs.Meminfo(); err == nil {
		snap.Memory = memory(mem)
	}
	return snap, nil
}

// busyPercent is the non-idle share of CPU time since boot.
func busyPercent(c procfs.CPUStat) float64 {
	idle := c.Idle + c.Iowait
	total := idle + c.User + c.Nice + c.System + c.IRQ + c.SoftIRQ + c.Steal
	if total <= 0 {
		return 0
	}
	return round2((total - idle) / total * 100)
}

func memory(m procfs.Meminfo) Memory {
	var out Memory
	if m.MemTotal != nil {
		out.TotalBytes = *m.MemTotal * 1024
	}
	if m.MemAvailable != nil {
		out.AvailableBytes = *m.MemAvailable * 1024
	} else if m.MemFree != nil {
		out.AvailableBytes = *m.MemFree * 1024
	}
	if out.TotalBytes > out.AvailableBytes {
		out.UsedBytes = out.TotalBytes - out.AvailableBytes
	}
	out.UsedPercent = percent(out.UsedBytes, out.TotalBytes)
	return out
}

func percent(part, whole uint64) float64 {
	if whole == 0 {
		return 0
	}
	return round2(float64(part) / float64(whole) * 100)
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
