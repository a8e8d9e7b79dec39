package metrics

import (
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/process"
)

// ProcessSnapshot ресурсы процесса на момент снятия
type ProcessSnapshot struct {
	CPUPercent float64
	RSSMB      float64
	AllocMB    float64
	NumGC      uint32
	Goroutines int
}

// TakeProcessSnapshot снимает использование CPU и памяти текущим процессом
func TakeProcessSnapshot() (ProcessSnapshot, error) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	snap := ProcessSnapshot{
		AllocMB:    float64(m.Alloc) / 1024 / 1024,
		NumGC:      m.NumGC,
		Goroutines: runtime.NumGoroutine(),
	}

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return snap, err
	}

	if mem, err := proc.MemoryInfo(); err == nil {
		snap.RSSMB = float64(mem.RSS) / 1024 / 1024
	}

	// Процент CPU процесса; если недоступен, берем системный
	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		cpuPercents, err := cpu.Percent(100*time.Millisecond, false)
		if err != nil || len(cpuPercents) == 0 {
			return snap, err
		}
		cpuPercent = cpuPercents[0]
	}
	snap.CPUPercent = cpuPercent

	return snap, nil
}
