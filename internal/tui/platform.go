package tui

import (
	"os"
	"runtime"
)

// Platform is the shortcut flavor detected once at startup.
type Platform struct {
	Mac bool
}

// DetectPlatform decides from the OS and the terminal program whether to
// label the toggle shortcut the macOS way.
func DetectPlatform(goos string, getenv func(string) string) Platform {
	if goos == "darwin" {
		return Platform{Mac: true}
	}
	switch getenv("TERM_PROGRAM") {
	case "Apple_Terminal", "iTerm.app", "iTerm2":
		return Platform{Mac: true}
	}
	return Platform{}
}

// CurrentPlatform detects the platform of the running process.
func CurrentPlatform() Platform {
	return DetectPlatform(runtime.GOOS, os.Getenv)
}

// ShortcutLabel is the label shown for the toggle shortcut.
func (p Platform) ShortcutLabel() string {
	if p.Mac {
		return "⌘K"
	}
	return "Ctrl+K"
}
