package service

import (
	"context"
	"log/slog"
	"time"

	"gift-store-api/internal/model"
)

// SecurityEventStore persists the auth audit trail.
type SecurityEventStore interface {
	Log(ctx context.Context, event model.SecurityEvent) error
	Query(ctx context.Context, query model.SecurityEventQuery) ([]model.SecurityEvent, model.Meta, error)
}

// AuditService records authentication events best-effort: a failed write is
// logged but never fails the request that triggered it.
type AuditService struct {
	store SecurityEventStore
}

func NewAuditService(store SecurityEventStore) *AuditService {
	return &AuditService{store: store}
}

func (s *AuditService) Record(ctx context.Context, action string, username string, clientIP string, opErr error) {
	if s == nil || s.store == nil {
		return
	}

	event := model.SecurityEvent{
		Action:     action,
		Username:   username,
		ClientIP:   clientIP,
		Status:     model.EventStatusOK,
		OccurredAt: time.Now().UTC(),
	}
	if opErr != nil {
		event.Status = model.EventStatusDenied
		event.Error = opErr.Error()
	}

	if err := s.store.Log(ctx, event); err != nil {
		slog.Warn("security event not recorded", "action", action, "error", err)
	}
}

func (s *AuditService) Query(ctx context.Context, query model.SecurityEventQuery) ([]model.SecurityEvent, model.Meta, error) {
	return s.store.Query(ctx, query)
}
