package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
)

type countingProcessor struct {
	calls atomic.Int32
	err   error
}

func (p *countingProcessor) ProcessDue(ctx context.Context) (int, error) {
	p.calls.Add(1)
	return 2, p.err
}

func TestNew_InvalidSpec(t *testing.T) {
	if _, err := New("not a spec", "UTC", &countingProcessor{}, zerolog.Nop()); err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
}

func TestNew_InvalidTimeZone(t *testing.T) {
	if _, err := New("@every 1h", "Mars/Olympus", &countingProcessor{}, zerolog.Nop()); err == nil {
		t.Fatal("expected error for unknown time zone")
	}
}

func TestTick(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"success", nil},
		{"processor error", errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc := &countingProcessor{err: tt.err}
			s, err := New("@every 1h", "UTC", proc, zerolog.Nop())
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			s.Tick()
			if got := proc.calls.Load(); got != 1 {
				t.Errorf("ProcessDue called %d times, want 1", got)
			}
		})
	}
}

func TestTick_SkipsWhileRunning(t *testing.T) {
	proc := &countingProcessor{}
	s, err := New("@every 1h", "", proc, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.running = true
	s.Tick()
	if got := proc.calls.Load(); got != 0 {
		t.Errorf("ProcessDue called %d times while a sweep was running, want 0", got)
	}
}

func TestStartStop(t *testing.T) {
	s, err := New("@every 1h", "UTC", &countingProcessor{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Start()
	s.Stop(context.Background())
}
