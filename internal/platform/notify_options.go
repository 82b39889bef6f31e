// Package platform delivers desktop notifications through the native
// mechanism of each operating system.
package platform

// AppName is the application name notification centres group messages by.
const AppName = "xrayview"

// Options configures how a notification is displayed on the host platform.
type Options struct {
	// IconPath, when non-empty, points to an image file the notification center
	// should display with the notification if supported by the platform.
	IconPath string
	// Timeout in milliseconds; zero uses the platform default.
	TimeoutMs int32
}

const defaultTimeoutMs = 5000

func (o Options) timeout() int32 {
	if o.TimeoutMs > 0 {
		return o.TimeoutMs
	}
	return defaultTimeoutMs
}
