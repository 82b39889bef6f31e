//go:build !linux && !darwin && !windows

package platform

import "errors"

// ErrUnsupported is returned where no notification backend exists.
var ErrUnsupported = errors.New("desktop notifications are not supported on this platform")

// Notify always fails with ErrUnsupported.
func Notify(title, body string, opts Options) error {
	return ErrUnsupported
}
