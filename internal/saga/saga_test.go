package saga

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/muralvote/muralvote/internal/logging"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
}

func TestRun_AllStepsSucceed(t *testing.T) {
	var order []string
	steps := []Step{
		{Name: "one", Run: func(ctx context.Context) error { order = append(order, "one"); return nil }},
		{Name: "two", Run: func(ctx context.Context) error { order = append(order, "two"); return nil }},
	}

	if err := Run(context.Background(), testLogger(), steps); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(order) != 2 || order[0] != "one" || order[1] != "two" {
		t.Fatalf("unexpected order: %v", order)
	}
}

func TestRun_CompensatesInReverse(t *testing.T) {
	var compensated []string
	boom := errors.New("boom")

	steps := []Step{
		{
			Name:       "one",
			Run:        func(ctx context.Context) error { return nil },
			Compensate: func(ctx context.Context) error { compensated = append(compensated, "one"); return nil },
		},
		{
			Name:       "two",
			Run:        func(ctx context.Context) error { return nil },
			Compensate: func(ctx context.Context) error { compensated = append(compensated, "two"); return nil },
		},
		{
			Name: "three",
			Run:  func(ctx context.Context) error { return boom },
		},
	}

	err := Run(context.Background(), testLogger(), steps)
	if !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}
	if len(compensated) != 2 || compensated[0] != "two" || compensated[1] != "one" {
		t.Fatalf("unexpected compensation order: %v", compensated)
	}
}

func TestRun_FailingStepNotCompensated(t *testing.T) {
	var compensated []string

	steps := []Step{
		{
			Name:       "fails",
			Run:        func(ctx context.Context) error { return errors.New("boom") },
			Compensate: func(ctx context.Context) error { compensated = append(compensated, "fails"); return nil },
		},
	}

	if err := Run(context.Background(), testLogger(), steps); err == nil {
		t.Fatal("expected error")
	}
	if len(compensated) != 0 {
		t.Fatalf("failing step must not compensate itself: %v", compensated)
	}
}

func TestRun_CompensationFailureKeepsOriginalError(t *testing.T) {
	boom := errors.New("boom")

	steps := []Step{
		{
			Name:       "one",
			Run:        func(ctx context.Context) error { return nil },
			Compensate: func(ctx context.Context) error { return errors.New("undo failed") },
		},
		{
			Name: "two",
			Run:  func(ctx context.Context) error { return boom },
		},
	}

	err := Run(context.Background(), testLogger(), steps)
	if !errors.Is(err, boom) {
		t.Fatalf("compensation failure must not mask the original error, got %v", err)
	}
}

func TestRun_ErrorNamesStep(t *testing.T) {
	steps := []Step{
		{Name: "store asset", Run: func(ctx context.Context) error { return errors.New("boom") }},
	}

	err := Run(context.Background(), testLogger(), steps)
	if err == nil || err.Error() != "store asset: boom" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRun_NilCompensateSkipped(t *testing.T) {
	steps := []Step{
		{Name: "read", Run: func(ctx context.Context) error { return nil }},
		{Name: "fail", Run: func(ctx context.Context) error { return errors.New("boom") }},
	}

	if err := Run(context.Background(), testLogger(), steps); err == nil {
		t.Fatal("expected error")
	}
}
