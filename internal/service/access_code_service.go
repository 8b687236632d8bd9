package service

import (
	"errors"
	"time"

	"whatsledger/internal/domain"
	"whatsledger/internal/models"

	"gorm.io/gorm"
)

const DefaultAccessCodeExpiryDays = 7

var (
	ErrAccessCodeNotFound  = errors.New("access code not found")
	ErrInvalidExtension    = errors.New("valid number of additional days is required")
	ErrAccessCodeNotActive = errors.New("can only change active access codes")
)

type AccessCodeStore interface {
	Create(businessName string, expiresAt time.Time, createdBy *uint) (*models.AccessCode, error)
	GetByID(id uint) (*models.AccessCode, error)
	GetByCode(code string) (*models.AccessCode, error)
	List() ([]models.AccessCode, error)
	Update(ac *models.AccessCode) error
}

// AccessCodeView is an access code as shown to admins.
type AccessCodeView struct {
	models.AccessCode
	IsUsed    bool `json:"is_used"`
	IsExpired bool `json:"is_expired"`
}

type AccessCodeService struct {
	codes AccessCodeStore
	now   func() time.Time
}

func NewAccessCodeService(codes AccessCodeStore) *AccessCodeService {
	return &AccessCodeService{codes: codes, now: time.Now}
}

func (s *AccessCodeService) Create(businessName string, expiryDays int, adminID uint) (*models.AccessCode, error) {
	if expiryDays <= 0 {
		expiryDays = DefaultAccessCodeExpiryDays
	}
	var createdBy *uint
	if adminID != 0 {
		createdBy = &adminID
	}
	return s.codes.Create(businessName, s.now().AddDate(0, 0, expiryDays), createdBy)
}

func (s *AccessCodeService) List() ([]AccessCodeView, error) {
	codes, err := s.codes.List()
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]AccessCodeView, len(codes))
	for i := range codes {
		ac := codes[i]
		out[i] = AccessCodeView{
			AccessCode: ac,
			IsUsed:     ac.IsUsed(),
			IsExpired:  ac.Status == domain.AccessCodeExpired || (ac.Status == domain.AccessCodeActive && !now.Before(ac.ExpiresAt)),
		}
	}
	return out, nil
}

// Extend pushes the expiry of an active code forward from its current expiry.
func (s *AccessCodeService) Extend(id uint, additionalDays int) (*models.AccessCode, error) {
	if additionalDays <= 0 {
		return nil, ErrInvalidExtension
	}
	ac, err := s.activeCode(id)
	if err != nil {
		return nil, err
	}
	ac.ExpiresAt = ac.ExpiresAt.AddDate(0, 0, additionalDays)
	if err := s.codes.Update(ac); err != nil {
		return nil, err
	}
	return ac, nil
}

// Revoke marks an unused code expired so it can no longer be redeemed.
func (s *AccessCodeService) Revoke(id uint) (*models.AccessCode, error) {
	ac, err := s.activeCode(id)
	if err != nil {
		return nil, err
	}
	ac.Status = domain.AccessCodeExpired
	if err := s.codes.Update(ac); err != nil {
		return nil, err
	}
	return ac, nil
}

func (s *AccessCodeService) activeCode(id uint) (*models.AccessCode, error) {
	ac, err := s.codes.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccessCodeNotFound
		}
		return nil, err
	}
	if ac.Status != domain.AccessCodeActive {
		return nil, ErrAccessCodeNotActive
	}
	return ac, nil
}
