package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/simaogato/portfoy-backend/internal/logger"
)

// Job is a unit of background work
type Job interface {
	Run() error
	Name() string
}

// Scheduler runs named jobs on cron schedules. Schedules take a leading seconds field.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

// New creates a new scheduler
func New(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		log:     logger.Component(log, "scheduler"),
		entries: make(map[string]cron.EntryID),
	}
}

// Start begins firing registered jobs
func (s *Scheduler) Start() {
	jobs := len(s.cron.Entries())
	s.cron.Start()
	s.log.Info().Int("jobs", jobs).Msg("Scheduler started")
}

// Stop halts the schedule and waits for running jobs to return
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers job under its name, for example "0 0 18 * * *" for 18:00
// every day or "@every 1h". Job names must be unique.
func (s *Scheduler) AddJob(schedule string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[job.Name()]; ok {
		return fmt.Errorf("job %q already registered", job.Name())
	}

	id, err := s.cron.AddFunc(schedule, func() { _ = s.run(job, "schedule") })
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %q: %w", schedule, job.Name(), err)
	}
	s.entries[job.Name()] = id

	s.log.Info().Str("job", job.Name()).Str("schedule", schedule).Msg("Job registered")
	return nil
}

// Next reports when a registered job fires next. The time is zero until Start.
func (s *Scheduler) Next(name string) (time.Time, bool) {
	s.mu.Lock()
	id, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(id).Next, true
}

// RunNow runs job on the calling goroutine, outside its schedule
func (s *Scheduler) RunNow(job Job) error {
	return s.run(job, "manual")
}

func (s *Scheduler) run(job Job, trigger string) error {
	start := time.Now()
	err := job.Run()

	event := s.log.Debug()
	if err != nil {
		event = s.log.Error().Err(err)
	}
	event.Str("job", job.Name()).
		Str("trigger", trigger).
		Dur("took", time.Since(start)).
		Msg("Job finished")
	return err
}
