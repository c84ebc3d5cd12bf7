//go:build windows
// +build windows

package service

import (
	"fmt"
	"time"

	"golang.org/x/sys/windows/svc"
	"golang.org/x/sys/windows/svc/debug"
	"golang.org/x/sys/windows/svc/eventlog"
	"golang.org/x/sys/windows/svc/mgr"
)

const (
	ServiceName        = "RedEnvelope"
	ServiceDisplayName = "Red Envelope Service"
	ServiceDescription = "Indexes red envelope contracts and serves envelope status over HTTP"
)

// Service-specific exit codes reported to the service control manager.
const (
	exitOK uint32 = iota
	exitAppFailed
	exitAppStopped
)

var elog debug.Log

// redEnvelopeService implements svc.Handler
type redEnvelopeService struct {
	app *Application
}

// Execute reports Running while the app is up. If the app exits on its own
// the service stops with a non-zero code so recovery actions restart it.
func (s *redEnvelopeService) Execute(args []string, r <-chan svc.ChangeRequest, changes chan<- svc.Status) (bool, uint32) {
	const cmdsAccepted = svc.AcceptStop | svc.AcceptShutdown
	changes <- svc.Status{State: svc.StartPending}

	go s.app.Run()

	changes <- svc.Status{State: svc.Running, Accepts: cmdsAccepted}
	elog.Info(1, fmt.Sprintf("%s service started", ServiceName))

	for {
		select {
		case <-s.app.Done():
			changes <- svc.Status{State: svc.StopPending}
			if err := s.app.Err(); err != nil {
				elog.Error(1, fmt.Sprintf("%s application failed: %v", ServiceName, err))
				return true, exitAppFailed
			}
			elog.Warning(1, fmt.Sprintf("%s application exited without a stop request", ServiceName))
			return true, exitAppStopped

		case c := <-r:
			switch c.Cmd {
			case svc.Interrogate:
				changes <- c.CurrentStatus
			case svc.Stop, svc.Shutdown:
				elog.Info(1, fmt.Sprintf("%s service stopping", ServiceName))
				changes <- svc.Status{State: svc.StopPending}
				s.app.Shutdown()
				if err := s.app.Err(); err != nil {
					elog.Error(1, fmt.Sprintf("%s stopped with error: %v", ServiceName, err))
					return true, exitAppFailed
				}
				return false, exitOK
			default:
				elog.Error(1, fmt.Sprintf("unexpected control request #%d", c))
			}
		}
	}
}

// RunService runs the service
func RunService(isDebug bool, app *Application) {
	var err error
	if isDebug {
		elog = debug.New(ServiceName)
	} else {
		elog, err = eventlog.Open(ServiceName)
		if err != nil {
			return
		}
	}
	defer elog.Close()

	elog.Info(1, fmt.Sprintf("starting %s service", ServiceName))
	run := svc.Run
	if isDebug {
		run = debug.Run
	}
	if err := run(ServiceName, &redEnvelopeService{app: app}); err != nil {
		elog.Error(1, fmt.Sprintf("%s service failed: %v", ServiceName, err))
		return
	}
	elog.Info(1, fmt.Sprintf("%s service stopped", ServiceName))
}

func withManager(fn func(m *mgr.Mgr) error) error {
	m, err := mgr.Connect()
	if err != nil {
		return fmt.Errorf("connect to service manager: %w", err)
	}
	defer m.Disconnect()
	return fn(m)
}

func withService(fn func(s *mgr.Service) error) error {
	return withManager(func(m *mgr.Mgr) error {
		s, err := m.OpenService(ServiceName)
		if err != nil {
			return fmt.Errorf("service %s not installed: %w", ServiceName, err)
		}
		defer s.Close()
		return fn(s)
	})
}

// InstallService registers the service to start on boot and restart on failure.
func InstallService(exePath string) error {
	return withManager(func(m *mgr.Mgr) error {
		if s, err := m.OpenService(ServiceName); err == nil {
			s.Close()
			return fmt.Errorf("service %s already exists", ServiceName)
		}

		s, err := m.CreateService(ServiceName, exePath, mgr.Config{
			DisplayName: ServiceDisplayName,
			Description: ServiceDescription,
			StartType:   mgr.StartAutomatic,
		})
		if err != nil {
			return err
		}
		defer s.Close()

		if err := eventlog.InstallAsEventCreate(ServiceName, eventlog.Error|eventlog.Warning|eventlog.Info); err != nil {
			fmt.Printf("Warning: could not install event log source: %v\n", err)
		}

		// Exits with a non-zero code count as failures, so a crashed app restarts too.
		if err := s.SetRecoveryActionsOnNonCrashFailures(true); err != nil {
			fmt.Printf("Warning: failed to enable recovery on exit codes: %v\n", err)
		}
		recovery := []mgr.RecoveryAction{
			{Type: mgr.ServiceRestart, Delay: 5 * time.Second},
			{Type: mgr.ServiceRestart, Delay: 10 * time.Second},
			{Type: mgr.ServiceRestart, Delay: 30 * time.Second},
		}
		if err := s.SetRecoveryActions(recovery, uint32((24 * time.Hour).Seconds())); err != nil {
			fmt.Printf("Warning: failed to set recovery actions: %v\n", err)
		}
		return nil
	})
}

// UninstallService removes the Windows service
func UninstallService() error {
	return withService(func(s *mgr.Service) error {
		_ = eventlog.Remove(ServiceName)
		return s.Delete()
	})
}

// StartService starts the Windows service
func StartService() error {
	return withService(func(s *mgr.Service) error {
		return s.Start()
	})
}

// StopService stops the Windows service
func StopService() error {
	return withService(func(s *mgr.Service) error {
		_, err := s.Control(svc.Stop)
		return err
	})
}

// IsWindowsService checks if running as Windows service
func IsWindowsService() (bool, error) {
	return svc.IsWindowsService()
}
