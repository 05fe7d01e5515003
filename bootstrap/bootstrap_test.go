package bootstrap

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ohrlando/stream-list/config"
	"github.com/ohrlando/stream-list/logger"
)

type testConfig struct {
	config.ServiceConfig
}

// newTestConfig returns a config whose logger discards everything.
func newTestConfig(name string) *testConfig {
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Name: name}}
	cfg.Logging.Level = "disabled"
	return cfg
}

func TestNewApp(t *testing.T) {
	cfg := newTestConfig("test-svc")
	app, err := NewApp(cfg)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	if app.Name != "test-svc" {
		t.Errorf("expected name 'test-svc', got %q", app.Name)
	}
	if app.Cfg.Environment != "development" {
		t.Errorf("expected defaults to be applied, got environment %q", app.Cfg.Environment)
	}
	if app.gracefulTimeout != 5*time.Second {
		t.Errorf("expected default graceful timeout 5s, got %v", app.gracefulTimeout)
	}
}

func TestNewApp_InitialisesGlobalLogger(t *testing.T) {
	prev := logger.GetGlobalLogger()
	defer logger.SetGlobalLogger(prev)

	var buf strings.Builder
	cfg := newTestConfig("test-svc")
	cfg.Logging = logger.Config{Level: "debug", Format: logger.FormatJSON, Writer: &buf}

	app, err := NewApp(cfg)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	if app.Logger != logger.GetGlobalLogger() {
		t.Error("expected app logger to be the global logger")
	}
	app.Logger.Debug("hello")
	if !strings.Contains(buf.String(), `"hello"`) {
		t.Errorf("expected log line in writer, got %q", buf.String())
	}
}

func TestNewApp_ValidationFailure(t *testing.T) {
	_, err := NewApp(newTestConfig(""))
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "config validation") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRunTask_HookOrder(t *testing.T) {
	app, err := NewApp(newTestConfig("svc"))
	if err != nil {
		t.Fatal(err)
	}

	var order []string
	record := func(name string) Hook {
		return func(context.Context) error {
			order = append(order, name)
			return nil
		}
	}
	app.OnStart(record("start1"), record("start2"))
	app.OnStop(record("stop1"), record("stop2"))

	err = app.RunTask(context.Background(), func(context.Context) error {
		order = append(order, "task")
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask failed: %v", err)
	}

	want := []string{"start1", "start2", "task", "stop2", "stop1"}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Errorf("hook order = %v, want %v", order, want)
	}
}

func TestRunTask_TaskErrorStillStops(t *testing.T) {
	app, _ := NewApp(newTestConfig("svc"))
	taskErr := errors.New("task failed")
	stopped := false
	app.OnStop(func(context.Context) error {
		stopped = true
		return errors.New("stop failed")
	})

	err := app.RunTask(context.Background(), func(context.Context) error { return taskErr })
	if !errors.Is(err, taskErr) {
		t.Errorf("expected task error to win, got %v", err)
	}
	if !stopped {
		t.Error("expected stop hooks to run after a failed task")
	}
}

func TestRunTask_StopError(t *testing.T) {
	app, _ := NewApp(newTestConfig("svc"))
	app.OnStop(func(context.Context) error { return errors.New("flush failed") })

	err := app.RunTask(context.Background(), func(context.Context) error { return nil })
	if err == nil || !strings.Contains(err.Error(), "flush failed") {
		t.Errorf("expected stop error, got %v", err)
	}
}

func TestRunTask_StopErrorLogged(t *testing.T) {
	prev := logger.GetGlobalLogger()
	defer logger.SetGlobalLogger(prev)

	var buf strings.Builder
	cfg := newTestConfig("svc")
	cfg.Logging = logger.Config{Level: "error", Format: logger.FormatJSON, Writer: &buf}
	app, err := NewApp(cfg)
	if err != nil {
		t.Fatal(err)
	}
	app.OnStop(func(context.Context) error { return errors.New("flush failed") })
	_ = app.RunTask(context.Background(), func(context.Context) error { return nil })

	out := buf.String()
	if !strings.Contains(out, `"operation":"stop"`) || !strings.Contains(out, "flush failed") {
		t.Errorf("expected stop failure in log, got %q", out)
	}
}

func TestRunTask_StartErrorSkipsTask(t *testing.T) {
	app, _ := NewApp(newTestConfig("svc"))
	app.OnStart(func(context.Context) error { return errors.New("no exporter") })

	ran := false
	err := app.RunTask(context.Background(), func(context.Context) error {
		ran = true
		return nil
	})
	if err == nil || !strings.Contains(err.Error(), "onStart hook failed") {
		t.Errorf("expected start hook error, got %v", err)
	}
	if ran {
		t.Error("task must not run when a start hook fails")
	}
}

func TestRunTask_ParentCancellation(t *testing.T) {
	app, _ := NewApp(newTestConfig("svc"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := app.RunTask(ctx, func(ctx context.Context) error { return ctx.Err() })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestWithGracefulTimeout_NonPositiveKeepsDefault(t *testing.T) {
	app, err := NewApp(newTestConfig("svc"), WithGracefulTimeout(0))
	if err != nil {
		t.Fatal(err)
	}
	if app.gracefulTimeout != 5*time.Second {
		t.Errorf("graceful timeout = %v, want default 5s", app.gracefulTimeout)
	}
}

func TestWithGracefulTimeout(t *testing.T) {
	app, _ := NewApp(newTestConfig("svc"), WithGracefulTimeout(10*time.Millisecond))

	var deadline time.Time
	app.OnStop(func(ctx context.Context) error {
		deadline, _ = ctx.Deadline()
		return nil
	})
	if err := app.RunTask(context.Background(), func(context.Context) error { return nil }); err != nil {
		t.Fatal(err)
	}
	if deadline.IsZero() || time.Until(deadline) > 10*time.Millisecond {
		t.Errorf("expected stop context bounded by the graceful timeout, got deadline %v", deadline)
	}
}
