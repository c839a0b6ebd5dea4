package alarm

import (
	"context"
	"errors"
	"time"

	common_models "leadcrm/internal/common/models"
	"leadcrm/internal/features/lead"
	"leadcrm/internal/features/realtime"
	"leadcrm/pkg/apperr"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const defaultListLimit = 100

// UpdateInput carries the caller-driven mutation. Nil fields are untouched.
type UpdateInput struct {
	Status       *AlarmStatus
	SnoozedUntil *time.Time
	AlarmTime    *time.Time
	Notes        *string
}

type AlarmService interface {
	Create(ctx context.Context, p *common_models.Principal, leadID string, alarmTime time.Time, notes string) (*Alarm, error)
	List(ctx context.Context, userID primitive.ObjectID, statusFilter string, limit int64) ([]Alarm, error)
	CountActive(ctx context.Context, userID primitive.ObjectID) (int64, error)
	Update(ctx context.Context, alarmID string, userID primitive.ObjectID, input UpdateInput) (*Alarm, error)
	Delete(ctx context.Context, alarmID string, userID primitive.ObjectID) error
	// GetForLead returns the soonest pending alarm for the lead, or nil.
	GetForLead(ctx context.Context, leadID string, userID primitive.ObjectID) (*Alarm, error)
}

type AlarmServiceImpl struct {
	Repo     AlarmRepository
	LeadRepo lead.LeadRepository
	Emitter  realtime.Emitter
	Logger   *zap.Logger
}

func NewAlarmService(repo AlarmRepository, leadRepo lead.LeadRepository, emitter realtime.Emitter, logger *zap.Logger) AlarmService {
	return &AlarmServiceImpl{
		Repo:     repo,
		LeadRepo: leadRepo,
		Emitter:  emitter,
		Logger:   logger,
	}
}

func (s *AlarmServiceImpl) Create(ctx context.Context, p *common_models.Principal, leadID string, alarmTime time.Time, notes string) (*Alarm, error) {
	if alarmTime.IsZero() {
		return nil, apperr.Validation("alarm time is required", "alarmTime")
	}

	l, err := s.LeadRepo.FindByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("lead %s not found", leadID)
		}
		return nil, err
	}
	if !p.IsSystemAdmin && l.AssignedTo != p.UserID {
		return nil, apperr.Forbidden("only the lead owner may set alarms on it")
	}

	alarm := &Alarm{
		ID:        primitive.NewObjectID(),
		LeadID:    l.ID,
		UserID:    p.UserID,
		AlarmTime: alarmTime,
		Status:    AlarmStatusActive,
		Notes:     notes,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.Repo.Create(ctx, alarm); err != nil {
		return nil, err
	}

	// Self-notification keeps the user's other devices in sync.
	s.emit("alarm:created", alarm)
	return alarm, nil
}

func (s *AlarmServiceImpl) List(ctx context.Context, userID primitive.ObjectID, statusFilter string, limit int64) ([]Alarm, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	var statuses []AlarmStatus
	switch statusFilter {
	case "":
	case StatusFilterActive:
		statuses = []AlarmStatus{AlarmStatusActive, AlarmStatusSnoozed}
	default:
		statuses = []AlarmStatus{AlarmStatus(statusFilter)}
	}

	alarms, err := s.Repo.FindByUser(ctx, userID, statuses, limit)
	if err != nil {
		return nil, err
	}
	if alarms == nil {
		alarms = []Alarm{}
	}
	return alarms, nil
}

func (s *AlarmServiceImpl) CountActive(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.Repo.CountUpcoming(ctx, userID, time.Now())
}

func (s *AlarmServiceImpl) Update(ctx context.Context, alarmID string, userID primitive.ObjectID, input UpdateInput) (*Alarm, error) {
	oid, err := primitive.ObjectIDFromHex(alarmID)
	if err != nil {
		return nil, apperr.NotFound("alarm %s not found", alarmID)
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, apperr.Validation("unknown alarm status", string(*input.Status))
	}

	set := bson.M{"updated_at": time.Now()}
	if input.AlarmTime != nil {
		set["alarm_time"] = *input.AlarmTime
	}
	if input.Notes != nil {
		set["notes"] = *input.Notes
	}
	applyStatusChange(set, input)

	alarm, err := s.Repo.Update(ctx, oid, userID, set)
	if err != nil {
		return nil, err
	}
	if alarm == nil {
		return nil, apperr.NotFound("alarm %s not found", alarmID)
	}

	s.emit("alarm:updated", alarm)
	return alarm, nil
}

// applyStatusChange folds status and snoozedUntil into the update document.
// A snoozedUntil value forces status to snoozed, overriding any status the
// caller passed alongside it.
func applyStatusChange(set bson.M, input UpdateInput) {
	if input.SnoozedUntil != nil {
		set["status"] = AlarmStatusSnoozed
		set["snoozed_until"] = *input.SnoozedUntil
		return
	}
	if input.Status != nil {
		set["status"] = *input.Status
	}
}

func (s *AlarmServiceImpl) Delete(ctx context.Context, alarmID string, userID primitive.ObjectID) error {
	oid, err := primitive.ObjectIDFromHex(alarmID)
	if err != nil {
		return apperr.NotFound("alarm %s not found", alarmID)
	}

	deleted, err := s.Repo.Delete(ctx, oid, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.NotFound("alarm %s not found", alarmID)
	}

	s.Emitter.Emit("alarm:deleted", map[string]any{"alarmId": alarmID}, realtime.EmitOptions{
		To: []string{realtime.RoomForUser(userID.Hex())},
	})
	return nil
}

func (s *AlarmServiceImpl) GetForLead(ctx context.Context, leadID string, userID primitive.ObjectID) (*Alarm, error) {
	oid, err := primitive.ObjectIDFromHex(leadID)
	if err != nil {
		return nil, apperr.NotFound("lead %s not found", leadID)
	}
	return s.Repo.FindSoonestForLead(ctx, oid, userID)
}

func (s *AlarmServiceImpl) emit(event string, alarm *Alarm) {
	s.Emitter.Emit(event, alarm, realtime.EmitOptions{
		To: []string{realtime.RoomForUser(alarm.UserID.Hex())},
	})
}
