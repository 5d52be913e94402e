package osutil

import (
	"os"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/pbnjay/memory"
)

const (
	// This is the default value for cgroup's limit_in_bytes. This is not a
	// valid value and indicates that the memory is not restricted.
	// See https://unix.stackexchange.com/questions/420906/what-is-the-value-for-the-cgroups-limit-in-bytes-if-the-memory-is-not-restricte
	unrestrictedMemoryLimit = 9223372036854771712

	// Upper bound on the share of memory handed to the Go runtime as a soft limit
	maxMemoryLimitCapacity = 0.9
)

var cgroupMemoryLimitLocations = []string{
	"/sys/fs/cgroup/memory.max",                   // cgroup v2
	"/sys/fs/cgroup/memory/memory.limit_in_bytes", // cgroup v1
}

// GetTotalMemory returns the total available memory size. The call is
// container-aware.
func GetTotalMemory() uint64 {
	totalMemory := memory.TotalMemory()

	for _, location := range cgroupMemoryLimitLocations {
		limit, ok := readCgroupMemoryLimit(location)
		if ok && limit < totalMemory {
			return limit
		}
	}
	return totalMemory
}

// SetMemoryLimit configures the Go runtime soft memory limit to the provided
// fraction of total memory and returns the applied limit in bytes. A zero
// limit is returned, and nothing is configured, when capacity is not positive
// or total memory can't be determined.
func SetMemoryLimit(capacity float64) int64 {
	if capacity <= 0 {
		return 0
	}
	if capacity > maxMemoryLimitCapacity {
		capacity = maxMemoryLimitCapacity
	}

	totalMemory := GetTotalMemory()
	if totalMemory == 0 {
		return 0
	}

	limit := int64(capacity * float64(totalMemory))
	debug.SetMemoryLimit(limit)
	return limit
}

func readCgroupMemoryLimit(location string) (uint64, bool) {
	raw, err := os.ReadFile(location)
	if err != nil {
		return 0, false
	}

	value := strings.TrimSpace(string(raw))
	if value == "max" {
		return 0, false
	}

	limit, err := strconv.ParseUint(value, 10, 64)
	if err != nil || limit == 0 || limit == unrestrictedMemoryLimit {
		return 0, false
	}
	return limit, true
}
