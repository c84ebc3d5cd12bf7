//go:build windows
// +build windows

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"golang.org/x/sys/windows/svc"
	"golang.org/x/sys/windows/svc/debug"
)

type executeResult struct {
	specific bool
	code     uint32
}

func execute(app *Application, requests chan svc.ChangeRequest) (<-chan executeResult, <-chan svc.Status) {
	elog = debug.New(ServiceName)
	changes := make(chan svc.Status, 16)
	result := make(chan executeResult, 1)
	go func() {
		specific, code := (&redEnvelopeService{app: app}).Execute(nil, requests, changes)
		result <- executeResult{specific, code}
	}()
	return result, changes
}

func awaitResult(t *testing.T, result <-chan executeResult) executeResult {
	t.Helper()
	select {
	case r := <-result:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("Execute did not return")
		return executeResult{}
	}
}

func lastState(changes <-chan svc.Status) svc.State {
	var state svc.State
	for {
		select {
		case s := <-changes:
			state = s.State
		default:
			return state
		}
	}
}

func TestExecuteStopsWhenApplicationFails(t *testing.T) {
	app := newApplication(withHook(fx.Hook{
		OnStart: func(context.Context) error { return errors.New("address already in use") },
	}))

	result, changes := execute(app, make(chan svc.ChangeRequest))
	r := awaitResult(t, result)

	assert.True(t, r.specific)
	assert.Equal(t, exitAppFailed, r.code)
	assert.Equal(t, svc.StopPending, lastState(changes))
}

func TestExecuteHandlesStopRequest(t *testing.T) {
	started := make(chan struct{})
	app := newApplication(withHook(fx.Hook{
		OnStart: func(context.Context) error { close(started); return nil },
	}))

	requests := make(chan svc.ChangeRequest, 1)
	result, changes := execute(app, requests)
	<-started
	requests <- svc.ChangeRequest{Cmd: svc.Stop}

	r := awaitResult(t, result)
	assert.False(t, r.specific)
	assert.Equal(t, exitOK, r.code)
	assert.Equal(t, svc.StopPending, lastState(changes))
	require.NoError(t, app.Err())
}
