package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"tradepost/internal/jobs"
)

type stubJob struct {
	name string
	runs int
	res  jobs.Result
}

func (s *stubJob) Name() string { return s.name }

func (s *stubJob) Run(_ context.Context, _ time.Time) jobs.Result {
	s.runs++
	return s.res
}

type capturingPublisher struct {
	published []jobs.Result
	err       error
}

func (p *capturingPublisher) PublishResult(_ context.Context, res jobs.Result) error {
	p.published = append(p.published, res)
	return p.err
}

func TestRegisterRejectsInvalidSchedule(t *testing.T) {
	s := New(zerolog.Nop(), nil)
	job := &stubJob{name: "noop"}

	if err := s.Register(context.Background(), "not a cron spec", job); err == nil {
		t.Fatal("Register() should reject an invalid cron expression")
	}
	if err := s.Register(context.Background(), "0 3 * * *", job); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
}

func TestRunOncePublishesReport(t *testing.T) {
	pub := &capturingPublisher{}
	s := New(zerolog.Nop(), pub)
	job := &stubJob{
		name: "noop",
		res:  jobs.Result{Job: "noop", Success: true, Message: "done"},
	}

	got := s.RunOnce(context.Background(), job)

	if job.runs != 1 {
		t.Fatalf("job ran %d times, want 1", job.runs)
	}
	if !got.Success || got.Job != "noop" {
		t.Fatalf("result = %+v", got)
	}
	if len(pub.published) != 1 || pub.published[0].Message != "done" {
		t.Fatalf("published = %+v", pub.published)
	}
}

func TestRunOnceWithoutPublisher(t *testing.T) {
	s := New(zerolog.Nop(), nil)
	job := &stubJob{name: "noop", res: jobs.Result{Job: "noop", Success: false}}

	if got := s.RunOnce(context.Background(), job); got.Success {
		t.Fatal("result must pass through unchanged")
	}
}

func TestNextRunReflectsRegisteredSchedules(t *testing.T) {
	s := New(zerolog.Nop(), nil)
	if s.NextRun() != nil {
		t.Fatal("NextRun() should be nil before registration")
	}

	if err := s.Register(context.Background(), "0 3 * * *", &stubJob{name: "noop"}); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Stop()

	next := s.NextRun()
	if next == nil || next.IsZero() {
		t.Fatal("NextRun() should report the upcoming firing")
	}
}
