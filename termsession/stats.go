package termsession

import (
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// WithStatsLogger starts a goroutine that writes one CPU/memory summary
// line through LogSink every interval, stopping when stop is closed. It
// exists to demonstrate that arbitrary untrusted, line-oriented text —
// sourced from a library with no notion of terminals — safely interleaves
// with frame commits through the sanitizing log sink without corrupting
// the display; the kernel's render path never imports gopsutil itself.
func (s *Session) WithStatsLogger(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				s.writeStatsLine()
			}
		}
	}()
}

func (s *Session) writeStatsLine() {
	percents, cpuErr := cpu.Percent(0, false)
	vm, memErr := mem.VirtualMemory()

	var cpuPct float64
	if cpuErr == nil && len(percents) > 0 {
		cpuPct = percents[0]
	}
	var memPct float64
	if memErr == nil {
		memPct = vm.UsedPercent
	}

	fmt.Fprintf(s.LogSink(), "cpu: %.1f%% mem: %.1f%%\n", cpuPct, memPct)
}
