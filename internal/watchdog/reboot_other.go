//go:build !linux

package watchdog

import "errors"

func reboot() error {
	return errors.New("reboot requires linux")
}
