package service

import (
	"context"

	"github.com/alimikegami/healthcare-microservices/users-service/internal/domain"
	"github.com/alimikegami/healthcare-microservices/users-service/internal/dto"
)

const (
	EventClinicianCreated = "dhos.D9000001"
	EventClinicianUpdated = "dhos.D9000002"
	EventWelcomeEmail     = "dhos.DM000017"
	EventAudit            = "dhos.34837004"
)

const (
	AuditLoginSuccess     = "Login Success"
	AuditLoginFailure     = "Login Failure"
	AuditLoginActivated   = "login activated"
	AuditLoginDeactivated = "login deactivated"

	reasonInvalidUsername = "Authentication failed, invalid username"
	reasonAccountDisabled = "Account is disabled"
	reasonLoginExpired    = "Login expired"
	reasonInvalidPassword = "Invalid password"

	welcomeEmailType = "WELCOME_EMAIL"
)

func (s *ServiceImpl) publishCreated(ctx context.Context, c domain.Clinician) {
	s.publisher.Publish(ctx, EventClinicianCreated, c.UUID, dto.NewAuthProjection(c))
}

func (s *ServiceImpl) publishUpdated(ctx context.Context, c domain.Clinician) {
	s.publisher.Publish(ctx, EventClinicianUpdated, c.UUID, dto.NewAuthProjection(c))
}

func (s *ServiceImpl) publishWelcomeEmail(ctx context.Context, c domain.Clinician) {
	s.publisher.Publish(ctx, EventWelcomeEmail, c.UUID, dto.WelcomeEmailEvent{
		EmailAddress: c.EmailAddress,
		EmailType:    welcomeEmailType,
	})
}

func (s *ServiceImpl) recordAudit(ctx context.Context, key string, eventType string, eventData map[string]interface{}) {
	s.publisher.Publish(ctx, EventAudit, key, dto.AuditEvent{
		EventType: eventType,
		EventData: eventData,
	})
}

// recordLoginFailure keeps a reason already present in eventData.
func (s *ServiceImpl) recordLoginFailure(ctx context.Context, key string, reason string, eventData map[string]interface{}) {
	if _, ok := eventData["reason"]; !ok {
		eventData["reason"] = reason
	}
	s.recordAudit(ctx, key, AuditLoginFailure, eventData)
}
