package helprequest

import (
	"context"
	"errors"
	"time"

	common_models "leadcrm/internal/common/models"
	"leadcrm/internal/features/audit"
	"leadcrm/internal/features/lead"
	"leadcrm/internal/features/realtime"
	"leadcrm/internal/features/user"
	"leadcrm/pkg/apperr"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type HelpRequestService interface {
	Create(ctx context.Context, p *common_models.Principal, leadID, toCallerID string, reqType RequestType, reason string) (*HelpRequest, error)
	// ListIncoming and ListSent default to pending when status is empty.
	ListIncoming(ctx context.Context, toCallerID primitive.ObjectID, status RequestStatus) ([]EnrichedRequest, error)
	ListSent(ctx context.Context, fromCallerID primitive.ObjectID, status RequestStatus) ([]EnrichedRequest, error)
	Respond(ctx context.Context, requestID string, responderID primitive.ObjectID, action string) (*HelpRequest, error)
}

type HelpRequestServiceImpl struct {
	Repo     HelpRequestRepository
	LeadRepo lead.LeadRepository
	UserRepo user.UserRepository
	Emitter  realtime.Emitter
	Audit    audit.AuditService
	Logger   *zap.Logger
}

func NewHelpRequestService(
	repo HelpRequestRepository,
	leadRepo lead.LeadRepository,
	userRepo user.UserRepository,
	emitter realtime.Emitter,
	auditService audit.AuditService,
	logger *zap.Logger,
) HelpRequestService {
	return &HelpRequestServiceImpl{
		Repo:     repo,
		LeadRepo: leadRepo,
		UserRepo: userRepo,
		Emitter:  emitter,
		Audit:    auditService,
		Logger:   logger,
	}
}

func (s *HelpRequestServiceImpl) Create(ctx context.Context, p *common_models.Principal, leadID, toCallerID string, reqType RequestType, reason string) (*HelpRequest, error) {
	if reqType != RequestTypeShare && reqType != RequestTypeTransfer {
		return nil, apperr.Validation("request type must be share or transfer", "type")
	}

	toOID, err := primitive.ObjectIDFromHex(toCallerID)
	if err != nil {
		return nil, apperr.NotFound("caller %s not found", toCallerID)
	}
	if toOID == p.UserID {
		return nil, apperr.Validation("cannot send a help request to yourself", "toCallerId")
	}

	l, err := s.LeadRepo.FindByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("lead %s not found", leadID)
		}
		return nil, err
	}
	// A requester without access gets the same answer as a missing lead, so
	// probing cannot reveal which leads exist.
	if !p.IsSystemAdmin && !l.AccessibleTo(p.UserID) {
		return nil, apperr.NotFound("lead %s not found", leadID)
	}

	target, err := s.UserRepo.FindByID(ctx, toCallerID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("caller %s not found", toCallerID)
		}
		return nil, err
	}

	pending, err := s.Repo.HasPendingPair(ctx, l.ID, target.ID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, apperr.Conflict("a pending help request already exists for this lead and caller")
	}

	req := &HelpRequest{
		ID:           primitive.NewObjectID(),
		LeadID:       l.ID,
		FromCallerID: p.UserID,
		ToCallerID:   target.ID,
		Type:         reqType,
		Reason:       reason,
		Status:       RequestStatusPending,
		CreatedAt:    time.Now(),
	}
	if err := s.Repo.Create(ctx, req); err != nil {
		// The pending_pair index closes the window between the pre-check and
		// the insert: the loser of a concurrent create lands here.
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.Conflict("a pending help request already exists for this lead and caller")
		}
		return nil, err
	}

	s.Emitter.Emit("help:request:new", map[string]any{
		"requestId": req.ID.Hex(),
		"leadId":    req.LeadID.Hex(),
		"leadName":  l.DisplayName(),
		"type":      req.Type,
		"reason":    req.Reason,
		"from":      p.UserID.Hex(),
	}, realtime.EmitOptions{
		To: []string{realtime.RoomForUser(target.ID.Hex())},
	})

	return req, nil
}

func (s *HelpRequestServiceImpl) ListIncoming(ctx context.Context, toCallerID primitive.ObjectID, status RequestStatus) ([]EnrichedRequest, error) {
	if status == "" {
		status = RequestStatusPending
	}
	requests, err := s.Repo.FindIncoming(ctx, toCallerID, status)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, requests, func(r HelpRequest) primitive.ObjectID { return r.FromCallerID })
}

func (s *HelpRequestServiceImpl) ListSent(ctx context.Context, fromCallerID primitive.ObjectID, status RequestStatus) ([]EnrichedRequest, error) {
	if status == "" {
		status = RequestStatusPending
	}
	requests, err := s.Repo.FindSent(ctx, fromCallerID, status)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, requests, func(r HelpRequest) primitive.ObjectID { return r.ToCallerID })
}

// enrich resolves lead display names and counterpart summaries in one batch
// per list call. Dangling references degrade to empty fields rather than
// failing the listing.
func (s *HelpRequestServiceImpl) enrich(ctx context.Context, requests []HelpRequest, counterpart func(HelpRequest) primitive.ObjectID) ([]EnrichedRequest, error) {
	counterpartIDs := make([]string, 0, len(requests))
	seen := make(map[string]bool)
	for _, r := range requests {
		id := counterpart(r).Hex()
		if !seen[id] {
			seen[id] = true
			counterpartIDs = append(counterpartIDs, id)
		}
	}

	summaries := make(map[string]user.Summary)
	if len(counterpartIDs) > 0 {
		users, err := s.UserRepo.FindByIDs(ctx, counterpartIDs)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			summaries[u.ID.Hex()] = u.Summary()
		}
	}

	leadNames := make(map[string]string)
	out := make([]EnrichedRequest, 0, len(requests))
	for _, r := range requests {
		leadHex := r.LeadID.Hex()
		name, ok := leadNames[leadHex]
		if !ok {
			if l, err := s.LeadRepo.FindByID(ctx, leadHex); err == nil {
				name = l.DisplayName()
			}
			leadNames[leadHex] = name
		}
		out = append(out, EnrichedRequest{
			HelpRequest: r,
			LeadName:    name,
			Counterpart: summaries[counterpart(r).Hex()],
		})
	}
	return out, nil
}

func (s *HelpRequestServiceImpl) Respond(ctx context.Context, requestID string, responderID primitive.ObjectID, action string) (*HelpRequest, error) {
	var status RequestStatus
	switch action {
	case "accept":
		status = RequestStatusAccepted
	case "reject":
		status = RequestStatusRejected
	default:
		return nil, apperr.Validation("action must be accept or reject", "action")
	}

	oid, err := primitive.ObjectIDFromHex(requestID)
	if err != nil {
		return nil, apperr.NotFound("help request %s not found", requestID)
	}

	req, err := s.Repo.Respond(ctx, oid, responderID, status, time.Now())
	if err != nil {
		return nil, err
	}
	if req == nil {
		// Covers resolved requests, requests targeting someone else, and
		// absent ids alike.
		return nil, apperr.NotFound("no pending help request %s for this caller", requestID)
	}

	if status == RequestStatusAccepted {
		switch req.Type {
		case RequestTypeShare:
			err = s.LeadRepo.AddSharedAccess(ctx, req.LeadID, responderID)
		case RequestTypeTransfer:
			err = s.LeadRepo.TransferOwnership(ctx, req.LeadID, req.FromCallerID, responderID)
		}
		if err != nil {
			s.Logger.Error("lead mutation failed after help request accept",
				zap.String("request_id", requestID),
				zap.String("type", string(req.Type)),
				zap.Error(err))
			return nil, err
		}
	}

	if err := s.Audit.LogChange(ctx, common_models.AuditActionRespond, "helpRequests", requestID, map[string]common_models.Change{
		"status": {Old: RequestStatusPending, New: status},
	}); err != nil {
		s.Logger.Warn("audit write failed", zap.String("request_id", requestID), zap.Error(err))
	}

	s.Emitter.Emit("help:request:responded", map[string]any{
		"requestId": req.ID.Hex(),
		"leadId":    req.LeadID.Hex(),
		"action":    action,
		"type":      req.Type,
	}, realtime.EmitOptions{
		To: []string{realtime.RoomForUser(req.FromCallerID.Hex())},
	})

	return req, nil
}
