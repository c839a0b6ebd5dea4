package cron_feature

import (
	"context"
	"fmt"
	"sync"
	"time"

	"leadcrm/internal/features/alarm"
	"leadcrm/internal/features/realtime"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// dueScanSchedule fires the due-alarm scan once a minute.
const dueScanSchedule = "* * * * *"

type CronService interface {
	InitializeScheduler(ctx context.Context) error
	StopScheduler() error
	// ScanDueAlarms pushes alarm:due for alarms whose time fell inside the
	// window since the previous scan. Read-only: alarm status is never mutated
	// here, only the owning user is notified.
	ScanDueAlarms(ctx context.Context)
}

type CronServiceImpl struct {
	alarmRepo alarm.AlarmRepository
	emitter   realtime.Emitter
	logger    *zap.Logger

	scheduler *cron.Cron
	mu        sync.Mutex
	lastScan  time.Time
}

func NewCronService(alarmRepo alarm.AlarmRepository, emitter realtime.Emitter, logger *zap.Logger) CronService {
	return &CronServiceImpl{
		alarmRepo: alarmRepo,
		emitter:   emitter,
		logger:    logger,
	}
}

func (s *CronServiceImpl) InitializeScheduler(ctx context.Context) error {
	s.logger.Info("initializing scheduler")
	s.scheduler = cron.New()
	s.lastScan = time.Now()

	_, err := s.scheduler.AddFunc(dueScanSchedule, func() {
		s.ScanDueAlarms(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to register due-alarm scan: %w", err)
	}

	s.scheduler.Start()
	return nil
}

func (s *CronServiceImpl) StopScheduler() error {
	if s.scheduler != nil {
		ctx := s.scheduler.Stop()
		<-ctx.Done()
	}
	return nil
}

func (s *CronServiceImpl) ScanDueAlarms(ctx context.Context) {
	// Non-overlapping windows so each alarm fires exactly one notification.
	s.mu.Lock()
	from := s.lastScan
	now := time.Now()
	s.lastScan = now
	s.mu.Unlock()

	alarms, err := s.alarmRepo.FindDueBetween(ctx, from, now)
	if err != nil {
		s.logger.Error("due-alarm scan failed", zap.Error(err))
		return
	}

	for _, a := range alarms {
		s.emitter.Emit("alarm:due", map[string]any{
			"alarmId":   a.ID.Hex(),
			"leadId":    a.LeadID.Hex(),
			"alarmTime": a.AlarmTime,
			"notes":     a.Notes,
		}, realtime.EmitOptions{
			To: []string{realtime.RoomForUser(a.UserID.Hex())},
		})
	}

	if len(alarms) > 0 {
		s.logger.Info("due alarms notified", zap.Int("count", len(alarms)))
	}
}
