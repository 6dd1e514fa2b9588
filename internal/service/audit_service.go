package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"rbac/internal/model"
	"rbac/internal/repository"
	"rbac/pkg/apperr"
	"rbac/pkg/pagination"
)

type AuditLogResponse struct {
	ID        string `json:"id"`
	ActorID   string `json:"actorId"`
	Action    string `json:"action"`
	EntityID  string `json:"entityId"`
	Details   string `json:"details"`
	CreatedAt string `json:"createdAt"`
}

// AuditQuery holds the optional audit trail filters.
type AuditQuery struct {
	Action   string `form:"action"`
	ActorID  string `form:"actorId" binding:"omitempty,objectid"`
	EntityID string `form:"entityId"`
}

type AuditLogListResponse struct {
	Logs       []AuditLogResponse `json:"logs"`
	Pagination pagination.Meta    `json:"pagination"`
}

// AuditService persists identity events and serves them back newest first.
type AuditService interface {
	EventPublisher
	ListAuditLogs(ctx context.Context, q AuditQuery, p pagination.Params) (*AuditLogListResponse, error)
}

type auditService struct {
	repo repository.AuditRepository
}

// NewAuditService creates a new AuditService instance
func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

// Publish writes ev as an audit row.
func (s *auditService) Publish(ctx context.Context, ev Event) error {
	details := "{}"
	if ev.Data != nil {
		b, err := json.Marshal(ev.Data)
		if err != nil {
			return fmt.Errorf("marshal audit details: %w", err)
		}
		details = string(b)
	}

	entry := &model.AuditLog{
		Action:   ev.Action,
		EntityID: ev.EntityID,
		Details:  details,
	}
	if ev.ActorID != "" {
		actor := ev.ActorID
		entry.ActorID = &actor
	}
	if !ev.OccurredAt.IsZero() {
		entry.CreatedAt = ev.OccurredAt
	}
	return s.repo.Log(ctx, entry)
}

func (s *auditService) ListAuditLogs(ctx context.Context, q AuditQuery, p pagination.Params) (*AuditLogListResponse, error) {
	if q.ActorID != "" && !model.IsValidID(q.ActorID) {
		return nil, apperr.BadRequest(MsgInvalidID)
	}
	logs, total, err := s.repo.List(ctx, repository.AuditFilter{
		Action:   strings.TrimSpace(q.Action),
		ActorID:  q.ActorID,
		EntityID: strings.TrimSpace(q.EntityID),
		Offset:   p.Offset,
		Limit:    p.Size,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}

	res := &AuditLogListResponse{Logs: make([]AuditLogResponse, 0, len(logs)), Pagination: p.MetaFor(total)}
	for _, l := range logs {
		actorID := ""
		if l.ActorID != nil {
			actorID = *l.ActorID
		}
		res.Logs = append(res.Logs, AuditLogResponse{
			ID:        l.ID.String(),
			ActorID:   actorID,
			Action:    l.Action,
			EntityID:  l.EntityID,
			Details:   l.Details,
			CreatedAt: l.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return res, nil
}
