package platform

// Options configures how a notification is displayed on the host platform.
type Options struct {
	// IconPath, when non-empty, points to an image file the notification center
	// should display with the notification if supported by the platform.
	IconPath string
	// Urgent asks the notification center to keep the message visible.
	Urgent bool
}

// AppName is reported to the desktop notification service.
const AppName = "ShineyPad"
