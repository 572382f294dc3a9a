// Package jobs schedules the background housekeeping that runs next to
// the API.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Job is one scheduled unit of work.
type Job struct {
	Name string
	Spec string
	Run  func(ctx context.Context)
}

// Scheduler wraps a cron runner whose jobs share a cancellable context
// and a per-run timeout.
type Scheduler struct {
	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
	log     *logrus.Entry
}

func New(log *logrus.Entry, timeout time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	c := cron.New(
		cron.WithLogger(cron.PrintfLogger(log)),
		cron.WithChain(cron.Recover(cron.PrintfLogger(log)), cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	return &Scheduler{cron: c, ctx: ctx, cancel: cancel, timeout: timeout, log: log}
}

// Add registers a job. An invalid spec is reported, not ignored.
func (s *Scheduler) Add(j Job) error {
	_, err := s.cron.AddFunc(j.Spec, func() {
		ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
		defer cancel()

		start := time.Now()
		j.Run(ctx)
		s.log.WithFields(logrus.Fields{"job": j.Name, "took_ms": time.Since(start).Milliseconds()}).Debug("job finished")
	})
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", j.Name, j.Spec, err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.WithField("jobs", len(s.cron.Entries())).Info("background scheduler started")
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
}
