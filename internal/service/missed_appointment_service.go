package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"panda-service/config"
	"panda-service/internal/converter"
	"panda-service/internal/domain/entity"
	"panda-service/internal/domain/repository"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MissedAppointmentService periodically marks scheduled appointments whose time
// (plus a grace period) has passed as missed.
type MissedAppointmentService struct {
	db              *gorm.DB
	log             *logrus.Logger
	cfg             config.SchedulerConfig
	appointmentRepo repository.AppointmentRepository
	auditService    AuditService
	now             func() time.Time

	cron   *cron.Cron
	runCtx context.Context
	cancel context.CancelFunc
}

func NewMissedAppointmentService(
	db *gorm.DB,
	log *logrus.Logger,
	cfg config.SchedulerConfig,
	appointmentRepo repository.AppointmentRepository,
	auditService AuditService,
) *MissedAppointmentService {
	return &MissedAppointmentService{
		db:              db,
		log:             log,
		cfg:             cfg,
		appointmentRepo: appointmentRepo,
		auditService:    auditService,
		now:             time.Now,
	}
}

// Start schedules the sweep on cfg.MissedSweepCron. An empty or "off" schedule leaves the sweeper off.
func (s *MissedAppointmentService) Start(ctx context.Context) error {
	if s.cfg.MissedSweepCron == "" || s.cfg.MissedSweepCron == "off" {
		s.log.Info("Missed appointment sweeper disabled")
		return nil
	}

	s.runCtx, s.cancel = context.WithCancel(ctx)
	c := cron.New()
	if _, err := c.AddFunc(s.cfg.MissedSweepCron, func() { s.runOnce(s.runCtx) }); err != nil {
		s.cancel()
		return fmt.Errorf("invalid missed sweep schedule %q: %w", s.cfg.MissedSweepCron, err)
	}
	c.Start()
	s.cron = c

	s.log.Infof("Missed appointment sweeper scheduled: %s (grace %s)", s.cfg.MissedSweepCron, s.cfg.MissedGrace)
	return nil
}

// Stop cancels an in-flight sweep and waits for it to return.
func (s *MissedAppointmentService) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

func (s *MissedAppointmentService) runOnce(ctx context.Context) {
	marked, err := s.SweepOnce(ctx)
	if err != nil {
		s.log.Warnf("Missed appointment sweep failed after %d updates: %+v", marked, err)
		return
	}
	if marked > 0 {
		s.log.Infof("Missed appointment sweep marked %d appointments", marked)
	}
}

// SweepOnce marks every overdue scheduled appointment as missed and returns how many it changed.
// Each appointment is loaded and updated in its own transaction together with its audit entry.
// An appointment that cannot be loaded or updated is logged and skipped.
func (s *MissedAppointmentService) SweepOnce(ctx context.Context) (int, error) {
	ids, err := s.appointmentRepo.FindScheduledIDs(s.db.WithContext(ctx))
	if err != nil {
		return 0, err
	}

	now := s.now().UTC()
	marked := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return marked, ctx.Err()
		}

		ok, err := s.markMissed(ctx, id, now)
		if err != nil {
			s.logSkipped(id, err)
			continue
		}
		if ok {
			marked++
		}
	}

	return marked, nil
}

func (s *MissedAppointmentService) logSkipped(id int, err error) {
	entry := s.log.WithField("appointment_id", id)
	if errors.Is(err, entity.ErrDataIntegrity) {
		entry.Errorf("Skipping corrupt appointment in missed sweep: %+v", err)
		return
	}
	entry.Warnf("Failed to mark appointment as missed: %+v", err)
}

func (s *MissedAppointmentService) markMissed(ctx context.Context, id int, now time.Time) (bool, error) {
	tx := s.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	appointment, err := s.appointmentRepo.FindByID(tx, id)
	if err != nil {
		return false, err
	}
	if appointment == nil || !appointment.IsScheduled() || !appointment.IsOverdue(now, s.cfg.MissedGrace) {
		return false, nil
	}

	oldValue := converter.AppointmentToResponse(appointment)
	appointment.MarkMissed(now)

	rows, err := s.appointmentRepo.MarkMissed(tx, appointment.ID, appointment.MissedTimestamp)
	if err != nil {
		return false, err
	}
	if rows == 0 {
		// changed since it was loaded
		return false, nil
	}

	if err := s.auditService.LogUpdate(ctx, tx, entity.AuditActionAppointmentMissed, AuditEntityAppointment, appointment.ID, oldValue, converter.AppointmentToResponse(appointment)); err != nil {
		return false, err
	}

	if err := tx.Commit().Error; err != nil {
		return false, err
	}
	return true, nil
}
