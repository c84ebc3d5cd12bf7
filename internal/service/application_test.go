package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
)

func TestOptionsGraphIsComplete(t *testing.T) {
	require.NoError(t, fx.ValidateApp(Options()))
}

func withHook(hook fx.Hook) fx.Option {
	return fx.Options(
		fx.NopLogger,
		fx.Invoke(func(lc fx.Lifecycle) { lc.Append(hook) }),
	)
}

func waitDone(t *testing.T, app *Application) {
	t.Helper()
	select {
	case <-app.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("application did not exit")
	}
}

func TestRunReportsStartFailure(t *testing.T) {
	app := newApplication(withHook(fx.Hook{
		OnStart: func(context.Context) error { return errors.New("address already in use") },
	}))

	go app.Run()
	waitDone(t, app)

	require.Error(t, app.Err())
	assert.Contains(t, app.Err().Error(), "address already in use")
}

func TestRunReportsBuildFailure(t *testing.T) {
	app := newApplication(fx.Options(
		fx.NopLogger,
		fx.Invoke(func(*time.Location) {}),
	))

	go app.Run()
	waitDone(t, app)

	assert.Error(t, app.Err())
}

func TestShutdownStopsRunningApplication(t *testing.T) {
	started := make(chan struct{})
	stopped := make(chan struct{})
	app := newApplication(withHook(fx.Hook{
		OnStart: func(context.Context) error { close(started); return nil },
		OnStop:  func(context.Context) error { close(stopped); return nil },
	}))

	go app.Run()
	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("application did not start")
	}

	app.Shutdown()
	waitDone(t, app)

	assert.NoError(t, app.Err())
	select {
	case <-stopped:
	default:
		t.Fatal("stop hook did not run")
	}
}

func TestRunReportsStopFailure(t *testing.T) {
	started := make(chan struct{})
	app := newApplication(withHook(fx.Hook{
		OnStart: func(context.Context) error { close(started); return nil },
		OnStop:  func(context.Context) error { return errors.New("flush failed") },
	}))

	go app.Run()
	<-started
	app.Shutdown()
	app.Wait()

	require.Error(t, app.Err())
	assert.Contains(t, app.Err().Error(), "flush failed")
}
