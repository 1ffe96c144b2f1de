package service

import (
	"context"
	"errors"
	"strings"

	"warranty-platform/internal/apperror"
	"warranty-platform/internal/model"

	"gorm.io/gorm"
)

// PartnerService manages the partner directory.
type PartnerService interface {
	List(ctx context.Context) ([]model.Partner, error)
	Get(ctx context.Context, id string) (*model.Partner, error)
	Create(ctx context.Context, req *model.PartnerRequest) (*model.Partner, error)
	Update(ctx context.Context, id string, req *model.PartnerRequest) (*model.Partner, error)
	Delete(ctx context.Context, id string) error
}

type partnerServiceImpl struct {
	db *gorm.DB
}

// NewPartnerService creates the partner directory service.
func NewPartnerService(db *gorm.DB) PartnerService {
	return &partnerServiceImpl{db: db}
}

func (s *partnerServiceImpl) List(ctx context.Context) ([]model.Partner, error) {
	partners := []model.Partner{}
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&partners).Error; err != nil {
		return nil, apperror.Internal("list partners", err)
	}
	return partners, nil
}

func (s *partnerServiceImpl) Get(ctx context.Context, id string) (*model.Partner, error) {
	var partner model.Partner
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&partner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("get partner", "partner", id)
		}
		return nil, apperror.Internal("get partner", err)
	}
	return &partner, nil
}

// emailTaken reports whether another partner already uses email.
func (s *partnerServiceImpl) emailTaken(ctx context.Context, email, exceptID string) (bool, error) {
	query := s.db.WithContext(ctx).Model(&model.Partner{}).Where("email = ?", email)
	if exceptID != "" {
		query = query.Where("id <> ?", exceptID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func normalizePartner(req *model.PartnerRequest) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
}

func (s *partnerServiceImpl) Create(ctx context.Context, req *model.PartnerRequest) (*model.Partner, error) {
	const op = "create partner"
	normalizePartner(req)
	if req.Name == "" || req.Email == "" {
		return nil, apperror.Validation(op, "name and email are required")
	}

	taken, err := s.emailTaken(ctx, req.Email, "")
	if err != nil {
		return nil, apperror.Internal(op, err)
	}
	if taken {
		return nil, apperror.Conflict(op, "partner email already exists: "+req.Email)
	}

	partner := &model.Partner{
		Name:    req.Name,
		Address: req.Address,
		Contact: req.Contact,
		Email:   req.Email,
		Website: req.Website,
	}
	if err := s.db.WithContext(ctx).Create(partner).Error; err != nil {
		// The unique index still catches a concurrent insert.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict(op, "partner email already exists: "+req.Email)
		}
		return nil, apperror.Internal(op, err)
	}
	return partner, nil
}

func (s *partnerServiceImpl) Update(ctx context.Context, id string, req *model.PartnerRequest) (*model.Partner, error) {
	const op = "update partner"
	normalizePartner(req)
	if req.Name == "" || req.Email == "" {
		return nil, apperror.Validation(op, "name and email are required")
	}

	partner, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	taken, err := s.emailTaken(ctx, req.Email, id)
	if err != nil {
		return nil, apperror.Internal(op, err)
	}
	if taken {
		return nil, apperror.Conflict(op, "partner email already exists: "+req.Email)
	}

	partner.Name = req.Name
	partner.Address = req.Address
	partner.Contact = req.Contact
	partner.Email = req.Email
	partner.Website = req.Website

	if err := s.db.WithContext(ctx).Save(partner).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict(op, "partner email already exists: "+req.Email)
		}
		return nil, apperror.Internal(op, err)
	}
	return partner, nil
}

func (s *partnerServiceImpl) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Partner{})
	if result.Error != nil {
		return apperror.Internal("delete partner", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("delete partner", "partner", id)
	}
	return nil
}
