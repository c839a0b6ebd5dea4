package dashboard

import (
	"context"

	"leadcrm/internal/features/alarm"
	"leadcrm/internal/features/calltask"
	"leadcrm/internal/features/helprequest"
	"leadcrm/internal/features/lead"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DashboardService interface {
	GetOverview(ctx context.Context, userID primitive.ObjectID) (*Overview, error)
}

type DashboardServiceImpl struct {
	LeadRepo        lead.LeadRepository
	CallTaskService calltask.CallTaskService
	HelpRequests    helprequest.HelpRequestService
	AlarmService    alarm.AlarmService
}

func NewDashboardService(
	leadRepo lead.LeadRepository,
	callTaskService calltask.CallTaskService,
	helpRequestService helprequest.HelpRequestService,
	alarmService alarm.AlarmService,
) DashboardService {
	return &DashboardServiceImpl{
		LeadRepo:        leadRepo,
		CallTaskService: callTaskService,
		HelpRequests:    helpRequestService,
		AlarmService:    alarmService,
	}
}

func (s *DashboardServiceImpl) GetOverview(ctx context.Context, userID primitive.ObjectID) (*Overview, error) {
	leads, err := s.LeadRepo.FindAccessibleTo(ctx, userID)
	if err != nil {
		return nil, err
	}

	tasks, err := s.CallTaskService.ListPending(ctx, userID)
	if err != nil {
		return nil, err
	}

	requests, err := s.HelpRequests.ListIncoming(ctx, userID, helprequest.RequestStatusPending)
	if err != nil {
		return nil, err
	}

	alarms, err := s.AlarmService.CountActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Overview{
		AccessibleLeads:     len(leads),
		PendingCallTasks:    len(tasks),
		PendingHelpRequests: len(requests),
		UpcomingAlarms:      alarms,
	}, nil
}
