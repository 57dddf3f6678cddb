package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// AttemptExpirer is satisfied by services.SubmissionService.
type AttemptExpirer interface {
	ExpireStale(ctx context.Context, maxAge time.Duration) (int64, error)
}

type Scheduler struct {
	cron    *cron.Cron
	expirer AttemptExpirer
	maxAge  time.Duration
}

// New registers the attempt expiry job on spec (standard cron syntax or
// descriptors such as "@every 15m"). The job does not run until Start.
func New(spec string, expirer AttemptExpirer, maxAge time.Duration) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(),
		expirer: expirer,
		maxAge:  maxAge,
	}
	if _, err := s.cron.AddFunc(spec, s.ExpireAttempts); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Printf("scheduler: started, expiring attempts older than %s", s.maxAge)
}

// Stop waits for a running job to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		log.Println("scheduler: stop timed out")
	}
}

func (s *Scheduler) ExpireAttempts() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := s.expirer.ExpireStale(ctx, s.maxAge)
	if err != nil {
		log.Printf("scheduler: expiring attempts failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("scheduler: expired %d stale attempts", n)
	}
}
