package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Job is a unit of background work run by the Scheduler.
type Job interface {
	Run() error
	Name() string
}

// Scheduler runs jobs on cron schedules.
type Scheduler struct {
	cron *cron.Cron
	log  *slog.Logger
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		log:  slog.With("component", "scheduler"),
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("Scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("Scheduler stopped")
}

// AddJob registers job under a standard five-field cron spec or a
// descriptor such as "@daily" or "@every 1h".
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.log.Debug("Running job", "job", job.Name())

		if err := job.Run(); err != nil {
			s.log.Error("Job failed", "job", job.Name(), "error", err)
		} else {
			s.log.Debug("Job completed", "job", job.Name())
		}
	})
	if err != nil {
		return fmt.Errorf("registering job %s: %w", job.Name(), err)
	}

	s.log.Info("Job registered", "schedule", schedule, "job", job.Name())
	return nil
}

type backupWriter interface {
	Backup(ctx context.Context, dir string) (string, error)
}

// BackupJob writes the ledger backup file into dir.
type BackupJob struct {
	service backupWriter
	dir     string
}

func NewBackupJob(service backupWriter, dir string) *BackupJob {
	return &BackupJob{service: service, dir: dir}
}

func (j *BackupJob) Name() string { return "ledger_backup" }

func (j *BackupJob) Run() error {
	path, err := j.service.Backup(context.Background(), j.dir)
	if err != nil {
		return err
	}
	slog.Info("Ledger backup written", "path", path)
	return nil
}
