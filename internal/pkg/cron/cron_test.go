package cron

import (
	"context"
	"errors"
	"testing"
	"time"
)

func waitForStatus(t *testing.T, s *Scheduler, name string, want JobStatus) ListItem {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		for _, item := range s.List() {
			if item.Name == name && item.Status == want {
				return item
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %q never reached status %q", name, want)
	return ListItem{}
}

func TestRunExecutesJob(t *testing.T) {
	s := New()
	done := make(chan struct{}, 1)
	s.Register(Job{
		Name:     "ok_job",
		Interval: time.Hour,
		Fn: func(context.Context) error {
			done <- struct{}{}
			return nil
		},
	})

	if err := s.Run(context.Background(), "ok_job"); err != nil {
		t.Fatalf("run: %v", err)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run")
	}

	item := waitForStatus(t, s, "ok_job", StatusFulfill)
	if item.RunCount != 1 || item.LastRunAt == nil {
		t.Fatalf("item = %+v", item)
	}
}

func TestRunRecordsFailure(t *testing.T) {
	s := New()
	s.Register(Job{
		Name:     "bad_job",
		Interval: time.Hour,
		Fn:       func(context.Context) error { return errors.New("boom") },
	})

	if err := s.Run(context.Background(), "bad_job"); err != nil {
		t.Fatalf("run: %v", err)
	}
	waitForStatus(t, s, "bad_job", StatusReject)
}

func TestRunUnknownJob(t *testing.T) {
	s := New()
	if err := s.Run(context.Background(), "nope"); err == nil {
		t.Fatal("expected error for unknown job")
	}
}

func TestListSortedByName(t *testing.T) {
	s := New()
	noop := func(context.Context) error { return nil }
	s.Register(Job{Name: "zebra", Interval: time.Hour, Fn: noop})
	s.Register(Job{Name: "alpha", Interval: time.Hour, Fn: noop})

	items := s.List()
	if len(items) != 2 || items[0].Name != "alpha" || items[1].Name != "zebra" {
		t.Fatalf("items = %+v", items)
	}
	if items[0].Status != StatusIdle {
		t.Fatalf("status = %q, want idle", items[0].Status)
	}
}
