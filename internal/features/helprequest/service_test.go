package helprequest

import (
	"context"
	"testing"
	"time"

	common_models "leadcrm/internal/common/models"
	"leadcrm/internal/features/lead"
	"leadcrm/internal/features/realtime"
	"leadcrm/internal/features/user"
	"leadcrm/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type stubRequestRepo struct {
	created   []*HelpRequest
	createErr error
	pending   bool
	respond   func(requestID, toCallerID primitive.ObjectID, status RequestStatus) (*HelpRequest, error)
	incoming  []HelpRequest
	sent      []HelpRequest
}

func (r *stubRequestRepo) Create(ctx context.Context, req *HelpRequest) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, req)
	return nil
}

func (r *stubRequestRepo) HasPendingPair(ctx context.Context, leadID, toCallerID primitive.ObjectID) (bool, error) {
	return r.pending, nil
}

func (r *stubRequestRepo) FindIncoming(ctx context.Context, toCallerID primitive.ObjectID, status RequestStatus) ([]HelpRequest, error) {
	return r.incoming, nil
}

func (r *stubRequestRepo) FindSent(ctx context.Context, fromCallerID primitive.ObjectID, status RequestStatus) ([]HelpRequest, error) {
	return r.sent, nil
}

func (r *stubRequestRepo) Respond(ctx context.Context, requestID, toCallerID primitive.ObjectID, status RequestStatus, respondedAt time.Time) (*HelpRequest, error) {
	return r.respond(requestID, toCallerID, status)
}

func (r *stubRequestRepo) EnsureIndexes(ctx context.Context) error { return nil }

type stubLeadRepo struct {
	leads     map[string]*lead.Lead
	shared    []primitive.ObjectID
	transfers []struct{ lead, prev, next primitive.ObjectID }
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
	r.shared = append(r.shared, userID)
	return nil
}

func (r *stubLeadRepo) TransferOwnership(ctx context.Context, leadID, previousOwnerID, newOwnerID primitive.ObjectID) error {
	r.transfers = append(r.transfers, struct{ lead, prev, next primitive.ObjectID }{leadID, previousOwnerID, newOwnerID})
	return nil
}

type stubUserRepo struct {
	users map[string]*user.User
}

func (r *stubUserRepo) Create(ctx context.Context, u *user.User) error { return nil }

func (r *stubUserRepo) FindByID(ctx context.Context, id string) (*user.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (r *stubUserRepo) FindByIDs(ctx context.Context, ids []string) ([]user.User, error) {
	var out []user.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *stubUserRepo) FindAll(ctx context.Context) ([]user.User, error) { return nil, nil }

func (r *stubUserRepo) FindByUsernameGlobal(ctx context.Context, username string) (*user.User, error) {
	return nil, mongo.ErrNoDocuments
}

func (r *stubUserRepo) CountByRole(ctx context.Context, roleID primitive.ObjectID) (int64, error) {
	return 0, nil
}

func (r *stubUserRepo) ReassignRole(ctx context.Context, fromRoleID, toRoleID primitive.ObjectID) (int64, error) {
	return 0, nil
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

type stubAudit struct {
	actions []common_models.AuditAction
}

func (a *stubAudit) LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error {
	a.actions = append(a.actions, action)
	return nil
}

func (a *stubAudit) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]common_models.AuditLog, error) {
	return nil, nil
}

type fixture struct {
	svc       *HelpRequestServiceImpl
	repo      *stubRequestRepo
	leadRepo  *stubLeadRepo
	emitter   *stubEmitter
	audit     *stubAudit
	requester *common_models.Principal
	lead      *lead.Lead
	target    *user.User
}

func newFixture() *fixture {
	requesterID := primitive.NewObjectID()
	requester := &common_models.Principal{UserID: requesterID}

	l := &lead.Lead{
		ID:         primitive.NewObjectID(),
		Fields:     map[string]any{"full_name": "Ravi Patel"},
		AssignedTo: requesterID,
	}
	target := &user.User{ID: primitive.NewObjectID(), Name: "Vik", Email: "vik@example.com"}

	repo := &stubRequestRepo{}
	leadRepo := &stubLeadRepo{leads: map[string]*lead.Lead{l.ID.Hex(): l}}
	emitter := &stubEmitter{}
	auditSvc := &stubAudit{}

	svc := &HelpRequestServiceImpl{
		Repo:     repo,
		LeadRepo: leadRepo,
		UserRepo: &stubUserRepo{users: map[string]*user.User{target.ID.Hex(): target}},
		Emitter:  emitter,
		Audit:    auditSvc,
		Logger:   zap.NewNop(),
	}
	return &fixture{
		svc:       svc,
		repo:      repo,
		leadRepo:  leadRepo,
		emitter:   emitter,
		audit:     auditSvc,
		requester: requester,
		lead:      l,
		target:    target,
	}
}

func TestCreateNotifiesTargetRoomOnly(t *testing.T) {
	f := newFixture()

	req, err := f.svc.Create(context.Background(), f.requester, f.lead.ID.Hex(), f.target.ID.Hex(), RequestTypeTransfer, "sick leave")
	require.NoError(t, err)

	assert.Equal(t, RequestStatusPending, req.Status)
	assert.Equal(t, f.requester.UserID, req.FromCallerID)
	assert.Equal(t, f.target.ID, req.ToCallerID)

	require.Len(t, f.emitter.emits, 1)
	assert.Equal(t, "help:request:new", f.emitter.emits[0].event)
	assert.Equal(t, []string{realtime.RoomForUser(f.target.ID.Hex())}, f.emitter.emits[0].opts.To)
	assert.False(t, f.emitter.emits[0].opts.IncludeAdmins)
}

func TestCreateRejectsSelfTarget(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), f.requester, f.lead.ID.Hex(), f.requester.UserID.Hex(), RequestTypeShare, "")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestCreateRejectsUnknownType(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), f.requester, f.lead.ID.Hex(), f.target.ID.Hex(), RequestType("merge"), "")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestCreateMasksInaccessibleLeadAsNotFound(t *testing.T) {
	f := newFixture()
	f.lead.AssignedTo = primitive.NewObjectID() // someone else owns it

	_, err := f.svc.Create(context.Background(), f.requester, f.lead.ID.Hex(), f.target.ID.Hex(), RequestTypeShare, "")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCreateAdminEquivalentBypassesLeadAccess(t *testing.T) {
	f := newFixture()
	f.lead.AssignedTo = primitive.NewObjectID()
	f.requester.IsSystemAdmin = true

	_, err := f.svc.Create(context.Background(), f.requester, f.lead.ID.Hex(), f.target.ID.Hex(), RequestTypeShare, "")
	assert.NoError(t, err)
}

func TestCreateConflictsOnPendingPair(t *testing.T) {
	f := newFixture()
	f.repo.pending = true

	_, err := f.svc.Create(context.Background(), f.requester, f.lead.ID.Hex(), f.target.ID.Hex(), RequestTypeShare, "")
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestCreateConflictsOnIndexRace(t *testing.T) {
	f := newFixture()
	// Pre-check passed, but a concurrent create won the insert.
	f.repo.createErr = mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}

	_, err := f.svc.Create(context.Background(), f.requester, f.lead.ID.Hex(), f.target.ID.Hex(), RequestTypeShare, "")
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestRespondAcceptTransferReassignsOwnership(t *testing.T) {
	f := newFixture()
	reqID := primitive.NewObjectID()
	responderID := f.target.ID

	f.repo.respond = func(id, toCallerID primitive.ObjectID, status RequestStatus) (*HelpRequest, error) {
		require.Equal(t, responderID, toCallerID)
		return &HelpRequest{
			ID:           id,
			LeadID:       f.lead.ID,
			FromCallerID: f.requester.UserID,
			ToCallerID:   responderID,
			Type:         RequestTypeTransfer,
			Status:       status,
		}, nil
	}

	resolved, err := f.svc.Respond(context.Background(), reqID.Hex(), responderID, "accept")
	require.NoError(t, err)
	assert.Equal(t, RequestStatusAccepted, resolved.Status)

	require.Len(t, f.leadRepo.transfers, 1)
	assert.Equal(t, f.lead.ID, f.leadRepo.transfers[0].lead)
	assert.Equal(t, f.requester.UserID, f.leadRepo.transfers[0].prev)
	assert.Equal(t, responderID, f.leadRepo.transfers[0].next)

	require.Len(t, f.emitter.emits, 1)
	assert.Equal(t, "help:request:responded", f.emitter.emits[0].event)
	assert.Equal(t, []string{realtime.RoomForUser(f.requester.UserID.Hex())}, f.emitter.emits[0].opts.To)

	assert.Contains(t, f.audit.actions, common_models.AuditActionRespond)
}

func TestRespondAcceptShareAddsAccess(t *testing.T) {
	f := newFixture()
	responderID := f.target.ID

	f.repo.respond = func(id, toCallerID primitive.ObjectID, status RequestStatus) (*HelpRequest, error) {
		return &HelpRequest{
			ID:           id,
			LeadID:       f.lead.ID,
			FromCallerID: f.requester.UserID,
			ToCallerID:   responderID,
			Type:         RequestTypeShare,
			Status:       status,
		}, nil
	}

	_, err := f.svc.Respond(context.Background(), primitive.NewObjectID().Hex(), responderID, "accept")
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{responderID}, f.leadRepo.shared)
	assert.Empty(t, f.leadRepo.transfers)
}

func TestRespondRejectLeavesLeadUntouched(t *testing.T) {
	f := newFixture()

	f.repo.respond = func(id, toCallerID primitive.ObjectID, status RequestStatus) (*HelpRequest, error) {
		return &HelpRequest{ID: id, Type: RequestTypeTransfer, FromCallerID: f.requester.UserID, Status: status}, nil
	}

	resolved, err := f.svc.Respond(context.Background(), primitive.NewObjectID().Hex(), f.target.ID, "reject")
	require.NoError(t, err)
	assert.Equal(t, RequestStatusRejected, resolved.Status)
	assert.Empty(t, f.leadRepo.shared)
	assert.Empty(t, f.leadRepo.transfers)
}

func TestRespondResolvedRequestIsNotFound(t *testing.T) {
	f := newFixture()
	// Second respond: the pending filter no longer matches.
	f.repo.respond = func(id, toCallerID primitive.ObjectID, status RequestStatus) (*HelpRequest, error) {
		return nil, nil
	}

	_, err := f.svc.Respond(context.Background(), primitive.NewObjectID().Hex(), f.target.ID, "accept")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Empty(t, f.leadRepo.shared)
	assert.Empty(t, f.leadRepo.transfers)
	assert.Empty(t, f.emitter.emits)
}

func TestRespondRejectsUnknownAction(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Respond(context.Background(), primitive.NewObjectID().Hex(), f.target.ID, "maybe")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestListIncomingEnrichesLeadAndCounterpart(t *testing.T) {
	f := newFixture()
	sender := &user.User{ID: primitive.NewObjectID(), Name: "Asha", Email: "asha@example.com"}
	f.svc.UserRepo.(*stubUserRepo).users[sender.ID.Hex()] = sender

	f.repo.incoming = []HelpRequest{
		{
			ID:           primitive.NewObjectID(),
			LeadID:       f.lead.ID,
			FromCallerID: sender.ID,
			ToCallerID:   f.target.ID,
			Type:         RequestTypeShare,
			Status:       RequestStatusPending,
		},
	}

	out, err := f.svc.ListIncoming(context.Background(), f.target.ID, "")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Ravi Patel", out[0].LeadName)
	assert.Equal(t, "Asha", out[0].Counterpart.Name)
	assert.Equal(t, sender.ID.Hex(), out[0].Counterpart.ID)
}
