// Package jobs runs the background maintenance schedule.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/eventnav/program-service/internal/repository"
	"github.com/eventnav/program-service/internal/service"
)

const jobTimeout = 5 * time.Minute

// Scheduler periodically reconciles seat counters against the
// registration ledger and rebuilds the assistant knowledge base.
type Scheduler struct {
	cron          *cron.Cron
	events        *repository.EventRepository
	sessions      *repository.SessionRepository
	registrations *service.RegistrationService
	assistant     *service.AssistantService
	log           *zap.Logger
}

func NewScheduler(
	events *repository.EventRepository,
	sessions *repository.SessionRepository,
	registrations *service.RegistrationService,
	assistant *service.AssistantService,
	log *zap.Logger,
) *Scheduler {
	return &Scheduler{
		cron:          cron.New(),
		events:        events,
		sessions:      sessions,
		registrations: registrations,
		assistant:     assistant,
		log:           log,
	}
}

// Start registers the jobs and launches the cron loop. Specs use cron
// syntax or @every intervals.
func (s *Scheduler) Start(reconcileSpec, knowledgeSpec string) error {
	if _, err := s.cron.AddFunc(reconcileSpec, s.reconcileAll); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(knowledgeSpec, s.refreshKnowledge); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("job scheduler started",
		zap.String("reconcile", reconcileSpec),
		zap.String("knowledge", knowledgeSpec))
	return nil
}

// Stop halts the schedule and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// reconcileAll recomputes every session's seat counter from the ledger.
// Drift is not expected in normal operation; this repairs the aftermath
// of crashes and manual data edits.
func (s *Scheduler) reconcileAll() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	events, err := s.events.List(ctx)
	if err != nil {
		s.log.Error("reconcile: listing events failed", zap.Error(err))
		return
	}
	var checked int
	for _, ev := range events {
		ids, err := s.sessions.ListIDsByEvent(ctx, ev.ID)
		if err != nil {
			s.log.Error("reconcile: listing sessions failed",
				zap.String("event_id", ev.ID.String()), zap.Error(err))
			continue
		}
		for _, id := range ids {
			if _, err := s.registrations.Reconcile(ctx, id); err != nil {
				s.log.Error("reconcile failed",
					zap.String("session_id", id.String()), zap.Error(err))
				continue
			}
			checked++
		}
	}
	s.log.Info("seat counters reconciled", zap.Int("sessions", checked))
}

func (s *Scheduler) refreshKnowledge() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.assistant.RefreshAllChunks(ctx); err != nil {
		s.log.Error("knowledge refresh failed", zap.Error(err))
		return
	}
	s.log.Info("assistant knowledge refreshed")
}
