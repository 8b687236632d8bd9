package service

import (
	"errors"
	"strings"
	"time"

	"whatsledger/config"
	"whatsledger/internal/auth"
	"whatsledger/internal/domain"
	"whatsledger/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailExists       = errors.New("email already registered")
	ErrInvalidCreds      = errors.New("invalid credentials")
	ErrAccountDisabled   = errors.New("business account is blocked")
	ErrInvalidAccessCode = errors.New("invalid or expired access code")
	ErrAccessCodeExpired = errors.New("access code has expired")
)

type BusinessStore interface {
	Create(b *models.Business) error
	GetByEmail(email string) (*models.Business, error)
	CreateWithCode(b *models.Business, code *models.AccessCode) error
}

type AdminStore interface {
	Create(a *models.Admin) error
	GetByEmail(email string) (*models.Admin, error)
}

type BusinessRegistration struct {
	Name        string
	OwnerName   string
	Email       string
	PhoneNumber string
	Password    string
}

type AuthService struct {
	cfg        *config.Config
	businesses BusinessStore
	admins     AdminStore
	codes      AccessCodeStore
	now        func() time.Time
}

func NewAuthService(cfg *config.Config, businesses BusinessStore, admins AdminStore, codes AccessCodeStore) *AuthService {
	return &AuthService{cfg: cfg, businesses: businesses, admins: admins, codes: codes, now: time.Now}
}

// HashPassword is shared with the admin CLI.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *AuthService) newBusiness(in BusinessRegistration) (*models.Business, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	_, err := s.businesses.GetByEmail(email)
	if err == nil {
		return nil, ErrEmailExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	return &models.Business{
		Name:         strings.TrimSpace(in.Name),
		OwnerName:    strings.TrimSpace(in.OwnerName),
		Email:        email,
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
		PasswordHash: hash,
		IsActive:     true,
	}, nil
}

func (s *AuthService) RegisterBusiness(in BusinessRegistration) (*models.Business, error) {
	b, err := s.newBusiness(in)
	if err != nil {
		return nil, err
	}
	if err := s.businesses.Create(b); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	return b, nil
}

// RegisterWithCode creates the business and consumes the access code atomically.
func (s *AuthService) RegisterWithCode(in BusinessRegistration, code string) (*models.Business, error) {
	b, err := s.newBusiness(in)
	if err != nil {
		return nil, err
	}
	ac, err := s.codes.GetByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidAccessCode
		}
		return nil, err
	}
	if ac.Status != domain.AccessCodeActive {
		return nil, ErrInvalidAccessCode
	}
	if !ac.Redeemable(s.now()) {
		return nil, ErrAccessCodeExpired
	}
	if err := s.businesses.CreateWithCode(b, ac); err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, ErrEmailExists
		case errors.Is(err, gorm.ErrRecordNotFound):
			// code redeemed concurrently
			return nil, ErrInvalidAccessCode
		}
		return nil, err
	}
	return b, nil
}

func (s *AuthService) LoginBusiness(email, password string) (*models.Business, string, error) {
	b, err := s.businesses.GetByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCreds
		}
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(b.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCreds
	}
	if !b.IsActive {
		return nil, "", ErrAccountDisabled
	}
	token, err := auth.GenerateAccessToken(&s.cfg.JWT, b.ID, b.Email, domain.RoleBusiness)
	if err != nil {
		return nil, "", err
	}
	return b, token, nil
}

func (s *AuthService) LoginAdmin(email, password string) (*models.Admin, string, error) {
	a, err := s.admins.GetByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCreds
		}
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCreds
	}
	token, err := auth.GenerateAccessToken(&s.cfg.JWT, a.ID, a.Email, domain.RoleAdmin)
	if err != nil {
		return nil, "", err
	}
	return a, token, nil
}

// CreateAdmin adds an admin unless the email is already taken; created reports which happened.
func (s *AuthService) CreateAdmin(name, email, password string) (admin *models.Admin, created bool, err error) {
	email = strings.ToLower(strings.TrimSpace(email))
	existing, err := s.admins.GetByEmail(email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, false, err
	}
	a := &models.Admin{Name: name, Email: email, PasswordHash: hash}
	if err := s.admins.Create(a); err != nil {
		return nil, false, err
	}
	return a, true, nil
}
