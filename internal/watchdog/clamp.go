package watchdog

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// sysfsClassDir holds per-device watchdog attributes.
const sysfsClassDir = "/sys/class/watchdog"

// setTimeoutClamped asks set for secs. When the driver rejects the value as
// out of range (EINVAL), it retries with limit, if known, and then halves
// down to one second.
//
// Returns:
//   - int: The timeout the driver accepted, in seconds
//   - error: The last rejection if nothing was accepted
func setTimeoutClamped(secs, limit int, set func(int) error) (int, error) {
	err := set(secs)
	if err == nil || !errors.Is(err, syscall.EINVAL) {
		return secs, err
	}

	if limit > 0 && limit < secs {
		if err = set(limit); err == nil {
			return limit, nil
		}
		if !errors.Is(err, syscall.EINVAL) {
			return 0, err
		}
		secs = limit
	}

	for secs > 1 {
		secs /= 2
		if err = set(secs); err == nil {
			return secs, nil
		}
		if !errors.Is(err, syscall.EINVAL) {
			return 0, err
		}
	}
	return 0, err
}

// readMaxTimeout returns the driver's max_timeout in seconds for the device
// at devPath, or 0 when sysfs does not report one. /dev/watchdog is the
// legacy alias of watchdog0.
func readMaxTimeout(classDir, devPath string) int {
	names := []string{filepath.Base(devPath)}
	if names[0] == "watchdog" {
		names = append(names, "watchdog0")
	}

	for _, name := range names {
		b, err := os.ReadFile(filepath.Join(classDir, name, "max_timeout"))
		if err != nil {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimSpace(string(b))); err == nil && n > 0 {
			return n
		}
	}
	return 0
}
