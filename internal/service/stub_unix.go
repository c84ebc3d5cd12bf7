//go:build !windows
// +build !windows

package service

import "errors"

// ErrUnsupported is returned by service management calls off Windows.
var ErrUnsupported = errors.New("service management is only available on Windows")

// RunService runs the app in the foreground; there is no service manager to talk to.
func RunService(isDebug bool, app *Application) {
	app.Run()
}

func InstallService(exePath string) error {
	return ErrUnsupported
}

func UninstallService() error {
	return ErrUnsupported
}

func StartService() error {
	return ErrUnsupported
}

func StopService() error {
	return ErrUnsupported
}

// IsWindowsService always returns false on non-Windows platforms
func IsWindowsService() (bool, error) {
	return false, nil
}
