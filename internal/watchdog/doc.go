// Package watchdog arms and feeds the device watchdog and performs resets.
//
// A hardware watchdog cannot be disabled once started, so the interface has
// only Arm and Feed. "Disabling" is approximated by arming with LongTimeout,
// which bounds worst-case downtime to a day.
//
// Device drives /dev/watchdog through the Linux watchdog ioctls. Soft is an
// in-process timer with the same contract for boards without one. Restarter
// carries out the reset the supervisor requests.
package watchdog
