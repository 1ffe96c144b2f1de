package service

import (
	"context"

	"warranty-platform/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Paging selects one page of a listing. A zero Limit means "everything".
type Paging struct {
	Page  int
	Limit int
}

// Enabled reports whether the caller asked for a page.
func (p Paging) Enabled() bool {
	return p.Limit > 0
}

func (p Paging) normalized() Paging {
	if p.Page < 1 {
		p.Page = 1
	}
	return p
}

// PagedResult is one page of a listing plus totals.
type PagedResult[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"total_pages"`
	TotalItems int `json:"total_items"`
}

// findPage counts query and loads the requested page into a PagedResult.
func findPage[T any](query *gorm.DB, paging Paging) (*PagedResult[T], error) {
	paging = paging.normalized()

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	items := []T{}
	offset := (paging.Page - 1) * paging.Limit
	if err := query.Session(&gorm.Session{}).Offset(offset).Limit(paging.Limit).Find(&items).Error; err != nil {
		return nil, err
	}

	totalPages := int((total + int64(paging.Limit) - 1) / int64(paging.Limit))
	if totalPages < 1 {
		totalPages = 1
	}

	return &PagedResult[T]{
		Items:      items,
		Page:       paging.Page,
		Limit:      paging.Limit,
		TotalPages: totalPages,
		TotalItems: int(total),
	}, nil
}

// recordAudit writes an audit entry. A failed write is logged, not returned:
// the change it describes has already been committed.
func recordAudit(ctx context.Context, audit AuditLog, logger *zap.Logger, entry model.AuditEntry) {
	if audit == nil {
		return
	}
	if err := audit.Record(ctx, entry); err != nil {
		logger.Warn("failed to record audit entry", zap.String("type", entry.Type), zap.Error(err))
	}
}
