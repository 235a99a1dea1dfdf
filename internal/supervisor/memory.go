package supervisor

import (
	"runtime"
	"runtime/debug"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/nerrad567/gray-logic-sensor/internal/infrastructure/logging"
)

// ReclaimMemory forces a collection and returns freed pages to the OS, then
// logs the heap and system memory at debug level.
func ReclaimMemory(log *logging.Logger) {
	runtime.GC()
	debug.FreeOSMemory()

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	args := []any{"heap_in_use", humanize.IBytes(ms.HeapInuse)}
	if vm, err := mem.VirtualMemory(); err == nil {
		args = append(args,
			"mem_available", humanize.IBytes(vm.Available),
			"mem_used_percent", humanize.FtoaWithDigits(vm.UsedPercent, 1),
		)
	}
	log.Debug("memory reclaimed", args...)
}
