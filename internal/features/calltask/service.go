package calltask

import (
	"context"
	"errors"
	"time"

	"leadcrm/internal/features/lead"
	"leadcrm/internal/features/realtime"
	"leadcrm/internal/features/user"
	"leadcrm/pkg/apperr"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// CompleteInput carries the call result reported by the mobile app.
type CompleteInput struct {
	StartedAt   time.Time
	EndedAt     time.Time
	DurationSec int
	Outcome     string
}

type CallTaskService interface {
	// CreateTask persists the task, then pushes a call:request to the
	// caller's room best-effort. Create success is independent of delivery.
	CreateTask(ctx context.Context, leadID, callerID, phoneNumber string) (*CallTask, error)
	// ListPending is the polling fallback for missed pushes: created and
	// acknowledged tasks for the caller, oldest first.
	ListPending(ctx context.Context, callerID primitive.ObjectID) ([]CallTask, error)
	Acknowledge(ctx context.Context, taskID string, callerID primitive.ObjectID) error
	Complete(ctx context.Context, taskID string, callerID primitive.ObjectID, input CompleteInput) error
}

type CallTaskServiceImpl struct {
	Repo     CallTaskRepository
	LeadRepo lead.LeadRepository
	UserRepo user.UserRepository
	Emitter  realtime.Emitter
	Logger   *zap.Logger
}

func NewCallTaskService(
	repo CallTaskRepository,
	leadRepo lead.LeadRepository,
	userRepo user.UserRepository,
	emitter realtime.Emitter,
	logger *zap.Logger,
) CallTaskService {
	return &CallTaskServiceImpl{
		Repo:     repo,
		LeadRepo: leadRepo,
		UserRepo: userRepo,
		Emitter:  emitter,
		Logger:   logger,
	}
}

func (s *CallTaskServiceImpl) CreateTask(ctx context.Context, leadID, callerID, phoneNumber string) (*CallTask, error) {
	if phoneNumber == "" {
		return nil, apperr.Validation("phone number is required", "phoneNumber")
	}

	l, err := s.LeadRepo.FindByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("lead %s not found", leadID)
		}
		return nil, err
	}

	caller, err := s.UserRepo.FindByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("caller %s not found", callerID)
		}
		return nil, err
	}

	task := &CallTask{
		ID:          primitive.NewObjectID(),
		LeadID:      l.ID,
		CallerID:    caller.ID,
		PhoneNumber: phoneNumber,
		State:       TaskStateCreated,
		CreatedAt:   time.Now(),
	}

	if err := s.Repo.Create(ctx, task); err != nil {
		return nil, err
	}

	// Push is best-effort: the caller may be offline, in which case the task
	// is picked up through ListPending on reconnect.
	s.Emitter.Emit("call:request", taskPayload(task), realtime.EmitOptions{
		To:            []string{realtime.RoomForUser(caller.ID.Hex())},
		IncludeAdmins: true,
	})

	return task, nil
}

func taskPayload(task *CallTask) map[string]any {
	return map[string]any{
		"taskId":      task.ID.Hex(),
		"leadId":      task.LeadID.Hex(),
		"phoneNumber": task.PhoneNumber,
	}
}

func (s *CallTaskServiceImpl) ListPending(ctx context.Context, callerID primitive.ObjectID) ([]CallTask, error) {
	tasks, err := s.Repo.FindPendingByCaller(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []CallTask{}
	}
	return tasks, nil
}

func (s *CallTaskServiceImpl) Acknowledge(ctx context.Context, taskID string, callerID primitive.ObjectID) error {
	oid, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return apperr.NotFound("task %s not found", taskID)
	}

	now := time.Now()
	task, err := s.Repo.Transition(ctx, oid, callerID,
		[]TaskState{TaskStateCreated},
		bson.M{"state": TaskStateAcknowledged, "acked_at": now},
	)
	if err != nil {
		return err
	}
	if task == nil {
		return apperr.NotFound("no pending task %s for this caller", taskID)
	}
	return nil
}

func (s *CallTaskServiceImpl) Complete(ctx context.Context, taskID string, callerID primitive.ObjectID, input CompleteInput) error {
	oid, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return apperr.NotFound("task %s not found", taskID)
	}

	now := time.Now()
	task, err := s.Repo.Transition(ctx, oid, callerID,
		[]TaskState{TaskStateCreated, TaskStateAcknowledged},
		bson.M{"state": TaskStateCompleted, "completed_at": now, "outcome": input.Outcome},
	)
	if err != nil {
		return err
	}
	if task == nil {
		return apperr.NotFound("no open task %s for this caller", taskID)
	}

	// Side record outside the state machine; failure to write it must not
	// undo the completed transition.
	log := &CallLog{
		ID:          primitive.NewObjectID(),
		TaskID:      oid,
		LeadID:      task.LeadID,
		CallerID:    callerID,
		StartedAt:   input.StartedAt,
		EndedAt:     input.EndedAt,
		DurationSec: input.DurationSec,
		Outcome:     input.Outcome,
		CreatedAt:   now,
	}
	if err := s.Repo.InsertCallLog(ctx, log); err != nil {
		s.Logger.Error("call log write failed", zap.String("task_id", taskID), zap.Error(err))
	}

	return nil
}
