package alarm

import (
	"context"
	"testing"
	"time"

	common_models "leadcrm/internal/common/models"
	"leadcrm/internal/features/lead"
	"leadcrm/internal/features/realtime"
	"leadcrm/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type stubAlarmRepo struct {
	created []*Alarm
	byUser  []Alarm
	// filters captured from FindByUser calls
	gotStatuses []AlarmStatus

	update  func(alarmID, userID primitive.ObjectID, set bson.M) (*Alarm, error)
	deleted bool
	soonest *Alarm
	count   int64
	gotNow  time.Time
}

func (r *stubAlarmRepo) Create(ctx context.Context, alarm *Alarm) error {
	r.created = append(r.created, alarm)
	return nil
}

func (r *stubAlarmRepo) FindByUser(ctx context.Context, userID primitive.ObjectID, statuses []AlarmStatus, limit int64) ([]Alarm, error) {
	r.gotStatuses = statuses
	return r.byUser, nil
}

func (r *stubAlarmRepo) CountUpcoming(ctx context.Context, userID primitive.ObjectID, now time.Time) (int64, error) {
	r.gotNow = now
	return r.count, nil
}

func (r *stubAlarmRepo) Update(ctx context.Context, alarmID, userID primitive.ObjectID, set bson.M) (*Alarm, error) {
	return r.update(alarmID, userID, set)
}

func (r *stubAlarmRepo) Delete(ctx context.Context, alarmID, userID primitive.ObjectID) (bool, error) {
	return r.deleted, nil
}

func (r *stubAlarmRepo) FindSoonestForLead(ctx context.Context, leadID, userID primitive.ObjectID) (*Alarm, error) {
	return r.soonest, nil
}

func (r *stubAlarmRepo) FindDueBetween(ctx context.Context, from, to time.Time) ([]Alarm, error) {
	return nil, nil
}

func (r *stubAlarmRepo) EnsureIndexes(ctx context.Context) error { return nil }

type stubLeadRepo struct {
	leads map[string]*lead.Lead
}

func (r *stubLeadRepo) Create(ctx context.Context, l *lead.Lead) error { return nil }

func (r *stubLeadRepo) FindByID(ctx context.Context, id string) (*lead.Lead, error) {
	if l, ok := r.leads[id]; ok {
		return l, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (r *stubLeadRepo) FindAccessibleTo(ctx context.Context, userID primitive.ObjectID) ([]lead.Lead, error) {
	return nil, nil
}

func (r *stubLeadRepo) AddSharedAccess(ctx context.Context, leadID, userID primitive.ObjectID) error {
	return nil
}

func (r *stubLeadRepo) TransferOwnership(ctx context.Context, leadID, previousOwnerID, newOwnerID primitive.ObjectID) error {
	return nil
}

type stubEmitter struct {
	emits []struct {
		event string
		opts  realtime.EmitOptions
	}
}

func (e *stubEmitter) Emit(event string, payload interface{}, opts realtime.EmitOptions) {
	e.emits = append(e.emits, struct {
		event string
		opts  realtime.EmitOptions
	}{event, opts})
}

func newAlarmFixture() (*AlarmServiceImpl, *stubAlarmRepo, *stubEmitter, *common_models.Principal, *lead.Lead) {
	owner := &common_models.Principal{UserID: primitive.NewObjectID()}
	l := &lead.Lead{ID: primitive.NewObjectID(), AssignedTo: owner.UserID}

	repo := &stubAlarmRepo{}
	emitter := &stubEmitter{}
	svc := &AlarmServiceImpl{
		Repo:     repo,
		LeadRepo: &stubLeadRepo{leads: map[string]*lead.Lead{l.ID.Hex(): l}},
		Emitter:  emitter,
		Logger:   zap.NewNop(),
	}
	return svc, repo, emitter, owner, l
}

func TestCreateAlarmRequiresOwnership(t *testing.T) {
	svc, repo, _, _, l := newAlarmFixture()
	stranger := &common_models.Principal{UserID: primitive.NewObjectID()}

	_, err := svc.Create(context.Background(), stranger, l.ID.Hex(), time.Now().Add(time.Hour), "")
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	assert.Empty(t, repo.created)
}

func TestCreateAlarmAdminBypassesOwnership(t *testing.T) {
	svc, repo, _, _, l := newAlarmFixture()
	admin := &common_models.Principal{UserID: primitive.NewObjectID(), IsSystemAdmin: true}

	a, err := svc.Create(context.Background(), admin, l.ID.Hex(), time.Now().Add(time.Hour), "check in")
	require.NoError(t, err)
	assert.Equal(t, AlarmStatusActive, a.Status)
	assert.Equal(t, admin.UserID, a.UserID)
	require.Len(t, repo.created, 1)
}

func TestCreateAlarmRejectsZeroTime(t *testing.T) {
	svc, _, _, owner, l := newAlarmFixture()

	_, err := svc.Create(context.Background(), owner, l.ID.Hex(), time.Time{}, "")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestCreateAlarmNotifiesOwnRoom(t *testing.T) {
	svc, _, emitter, owner, l := newAlarmFixture()

	_, err := svc.Create(context.Background(), owner, l.ID.Hex(), time.Now().Add(time.Hour), "")
	require.NoError(t, err)

	require.Len(t, emitter.emits, 1)
	assert.Equal(t, "alarm:created", emitter.emits[0].event)
	assert.Equal(t, []string{realtime.RoomForUser(owner.UserID.Hex())}, emitter.emits[0].opts.To)
}

func TestListActiveFilterIncludesSnoozed(t *testing.T) {
	svc, repo, _, owner, _ := newAlarmFixture()

	_, err := svc.List(context.Background(), owner.UserID, StatusFilterActive, 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []AlarmStatus{AlarmStatusActive, AlarmStatusSnoozed}, repo.gotStatuses)

	_, err = svc.List(context.Background(), owner.UserID, string(AlarmStatusDismissed), 0)
	require.NoError(t, err)
	assert.Equal(t, []AlarmStatus{AlarmStatusDismissed}, repo.gotStatuses)

	out, err := svc.List(context.Background(), owner.UserID, "", 0)
	require.NoError(t, err)
	assert.Empty(t, repo.gotStatuses)
	assert.NotNil(t, out)
}

func TestUpdateSnoozedUntilForcesSnoozedStatus(t *testing.T) {
	svc, repo, _, owner, _ := newAlarmFixture()
	until := time.Now().Add(30 * time.Minute)
	dismissed := AlarmStatusDismissed

	var gotSet bson.M
	repo.update = func(alarmID, userID primitive.ObjectID, set bson.M) (*Alarm, error) {
		gotSet = set
		return &Alarm{ID: alarmID, UserID: userID, Status: AlarmStatusSnoozed, SnoozedUntil: &until}, nil
	}

	// A snooze wins even when the caller also passed a contradictory status.
	a, err := svc.Update(context.Background(), primitive.NewObjectID().Hex(), owner.UserID, UpdateInput{
		Status:       &dismissed,
		SnoozedUntil: &until,
	})
	require.NoError(t, err)
	assert.Equal(t, AlarmStatusSnoozed, a.Status)
	assert.Equal(t, AlarmStatusSnoozed, gotSet["status"])
	assert.Equal(t, until, gotSet["snoozed_until"])
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	svc, repo, emitter, owner, _ := newAlarmFixture()
	bogus := AlarmStatus("definitely-not-a-status")

	repo.update = func(alarmID, userID primitive.ObjectID, set bson.M) (*Alarm, error) {
		t.Fatal("unknown status must be rejected before any write")
		return nil, nil
	}

	_, err := svc.Update(context.Background(), primitive.NewObjectID().Hex(), owner.UserID, UpdateInput{Status: &bogus})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "definitely-not-a-status")
	assert.Empty(t, emitter.emits)
}

func TestCountActiveUsesCurrentTimeCutoff(t *testing.T) {
	svc, repo, _, owner, _ := newAlarmFixture()
	repo.count = 1

	before := time.Now()
	n, err := svc.CountActive(context.Background(), owner.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// The future-only cutoff is "now", not zero or some fixed horizon.
	assert.False(t, repo.gotNow.Before(before))
	assert.False(t, repo.gotNow.After(time.Now()))
}

func TestUpdateStatusAloneIsApplied(t *testing.T) {
	svc, repo, emitter, owner, _ := newAlarmFixture()
	completed := AlarmStatusCompleted

	repo.update = func(alarmID, userID primitive.ObjectID, set bson.M) (*Alarm, error) {
		assert.Equal(t, AlarmStatusCompleted, set["status"])
		assert.NotContains(t, set, "snoozed_until")
		return &Alarm{ID: alarmID, UserID: userID, Status: AlarmStatusCompleted}, nil
	}

	_, err := svc.Update(context.Background(), primitive.NewObjectID().Hex(), owner.UserID, UpdateInput{Status: &completed})
	require.NoError(t, err)

	require.Len(t, emitter.emits, 1)
	assert.Equal(t, "alarm:updated", emitter.emits[0].event)
}

func TestUpdateUnownedAlarmIsNotFound(t *testing.T) {
	svc, repo, emitter, owner, _ := newAlarmFixture()
	repo.update = func(alarmID, userID primitive.ObjectID, set bson.M) (*Alarm, error) {
		return nil, nil
	}

	_, err := svc.Update(context.Background(), primitive.NewObjectID().Hex(), owner.UserID, UpdateInput{})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Empty(t, emitter.emits)

	_, err = svc.Update(context.Background(), "not-a-hex-id", owner.UserID, UpdateInput{})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestDeleteMissingAlarmIsNotFound(t *testing.T) {
	svc, repo, emitter, owner, _ := newAlarmFixture()
	repo.deleted = false

	err := svc.Delete(context.Background(), primitive.NewObjectID().Hex(), owner.UserID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Empty(t, emitter.emits)
}

func TestDeleteNotifiesOwnRoom(t *testing.T) {
	svc, repo, emitter, owner, _ := newAlarmFixture()
	repo.deleted = true

	require.NoError(t, svc.Delete(context.Background(), primitive.NewObjectID().Hex(), owner.UserID))
	require.Len(t, emitter.emits, 1)
	assert.Equal(t, "alarm:deleted", emitter.emits[0].event)
	assert.Equal(t, []string{realtime.RoomForUser(owner.UserID.Hex())}, emitter.emits[0].opts.To)
}

func TestGetForLeadReturnsNilWhenNonePending(t *testing.T) {
	svc, _, _, owner, l := newAlarmFixture()

	a, err := svc.GetForLead(context.Background(), l.ID.Hex(), owner.UserID)
	require.NoError(t, err)
	assert.Nil(t, a)
}
