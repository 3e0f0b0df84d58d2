package tasks_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/stratafolders/internal/app/system/tasks"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func stopWithin(t *testing.T, r *tasks.Runner, d time.Duration) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return r.Stop(ctx)
}

func TestRunner_RunsImmediatelyThenOnTicks(t *testing.T) {
	runner := tasks.New(zap.NewNop())

	var runs atomic.Int32
	ticked := make(chan struct{})
	runner.Register(tasks.Job{
		Name:     "tick",
		Interval: 20 * time.Millisecond,
		Run: func(ctx context.Context) error {
			if runs.Add(1) == 2 {
				close(ticked)
			}
			return nil
		},
	})
	runner.Start()

	select {
	case <-ticked:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run a second time")
	}
	if err := stopWithin(t, runner, 5*time.Second); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

func TestRunner_StopCancelsJobContext(t *testing.T) {
	runner := tasks.New(zap.NewNop())

	started := make(chan struct{})
	cancelled := make(chan struct{})
	runner.Register(tasks.Job{
		Name:     "waits",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			close(cancelled)
			return ctx.Err()
		},
	})
	runner.Start()
	<-started

	if err := stopWithin(t, runner, 5*time.Second); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Error("job context was not cancelled")
	}
}

func TestRunner_StopTimesOutOnStuckJob(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	runner := tasks.New(zap.New(core))

	started := make(chan struct{})
	release := make(chan struct{})
	defer close(release)
	runner.Register(tasks.Job{
		Name:     "stuck",
		Interval: time.Hour,
		Run: func(context.Context) error {
			close(started)
			<-release // ignores its context
			return nil
		},
	})
	runner.Start()
	<-started

	if err := stopWithin(t, runner, 50*time.Millisecond); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Stop() error = %v, want DeadlineExceeded", err)
	}
	entries := logs.FilterMessage("background task runner shutdown timed out").All()
	if len(entries) != 1 {
		t.Fatalf("expected one timeout warning, got %d", len(entries))
	}
	still, _ := entries[0].ContextMap()["jobs_still_running"].([]interface{})
	if len(still) != 1 || still[0] != "stuck" {
		t.Errorf("jobs_still_running = %v, want [stuck]", entries[0].ContextMap()["jobs_still_running"])
	}
}

func TestRunner_FailedJobKeepsRunning(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	runner := tasks.New(zap.New(core))

	var runs atomic.Int32
	again := make(chan struct{})
	runner.Register(tasks.Job{
		Name:     "flaky",
		Interval: 20 * time.Millisecond,
		Run: func(context.Context) error {
			if runs.Add(1) == 2 {
				close(again)
			}
			return errors.New("boom")
		},
	})
	runner.Start()

	select {
	case <-again:
	case <-time.After(2 * time.Second):
		t.Fatal("failing job was not rescheduled")
	}
	if err := stopWithin(t, runner, 5*time.Second); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if logs.FilterMessage("job failed").Len() < 1 {
		t.Error("expected a job failed log entry")
	}
}

func TestRunner_RegisterIgnoresNonPositiveInterval(t *testing.T) {
	runner := tasks.New(zap.NewNop())
	runner.Register(tasks.Job{Name: "off", Interval: 0, Run: func(context.Context) error { return nil }})
	runner.Register(tasks.Job{Name: "on", Interval: time.Minute, Run: func(context.Context) error { return nil }})

	if got := runner.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
}

func TestRunner_RunOnce(t *testing.T) {
	runner := tasks.New(zap.NewNop())

	var runs atomic.Int32
	runner.Register(tasks.Job{
		Name:     "manual",
		Interval: time.Hour,
		Run: func(context.Context) error {
			runs.Add(1)
			return nil
		},
	})

	if err := runner.RunOnce(context.Background(), "manual"); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if runs.Load() != 1 {
		t.Errorf("runs = %d, want 1", runs.Load())
	}
	if err := runner.RunOnce(context.Background(), "unknown"); err != nil {
		t.Errorf("RunOnce(unknown) = %v, want nil", err)
	}
}
