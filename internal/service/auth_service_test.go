package service

import (
	"errors"
	"testing"
	"time"

	"whatsledger/config"
	"whatsledger/internal/auth"
	"whatsledger/internal/domain"
	"whatsledger/internal/models"

	"gorm.io/gorm"
)

type fakeBusinesses struct {
	byEmail map[string]*models.Business
	nextID  uint
}

func newFakeBusinesses() *fakeBusinesses {
	return &fakeBusinesses{byEmail: map[string]*models.Business{}}
}

func (f *fakeBusinesses) Create(b *models.Business) error {
	if _, ok := f.byEmail[b.Email]; ok {
		return gorm.ErrDuplicatedKey
	}
	f.nextID++
	b.ID = f.nextID
	f.byEmail[b.Email] = b
	return nil
}

func (f *fakeBusinesses) GetByEmail(email string) (*models.Business, error) {
	if b, ok := f.byEmail[email]; ok {
		return b, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeBusinesses) CreateWithCode(b *models.Business, code *models.AccessCode) error {
	if code.Status != domain.AccessCodeActive {
		return gorm.ErrRecordNotFound
	}
	if err := f.Create(b); err != nil {
		return err
	}
	b.AccessCodeID = &code.ID
	code.Status = domain.AccessCodeUsed
	code.UsedByID = &b.ID
	return nil
}

type fakeAdmins struct {
	byEmail map[string]*models.Admin
}

func (f *fakeAdmins) Create(a *models.Admin) error {
	a.ID = uint(len(f.byEmail) + 1)
	f.byEmail[a.Email] = a
	return nil
}

func (f *fakeAdmins) GetByEmail(email string) (*models.Admin, error) {
	if a, ok := f.byEmail[email]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeCodes struct {
	codes  map[uint]*models.AccessCode
	nextID uint
}

func newFakeCodes() *fakeCodes { return &fakeCodes{codes: map[uint]*models.AccessCode{}} }

func (f *fakeCodes) Create(businessName string, expiresAt time.Time, createdBy *uint) (*models.AccessCode, error) {
	f.nextID++
	ac := &models.AccessCode{
		ID:           f.nextID,
		Code:         "ABCD-000" + string(rune('0'+f.nextID)),
		BusinessName: businessName,
		Status:       domain.AccessCodeActive,
		ExpiresAt:    expiresAt,
		CreatedByID:  createdBy,
	}
	f.codes[ac.ID] = ac
	return ac, nil
}

func (f *fakeCodes) GetByID(id uint) (*models.AccessCode, error) {
	if ac, ok := f.codes[id]; ok {
		cp := *ac
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCodes) GetByCode(code string) (*models.AccessCode, error) {
	for _, ac := range f.codes {
		if ac.Code == code {
			return ac, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCodes) List() ([]models.AccessCode, error) {
	var out []models.AccessCode
	for i := uint(1); i <= f.nextID; i++ {
		if ac, ok := f.codes[i]; ok {
			out = append(out, *ac)
		}
	}
	return out, nil
}

func (f *fakeCodes) Update(ac *models.AccessCode) error {
	cp := *ac
	f.codes[ac.ID] = &cp
	return nil
}

func newTestAuthService() (*AuthService, *fakeCodes) {
	cfg := &config.Config{JWT: config.JWTConfig{AccessSecret: "test-secret", AccessExpiry: 24 * time.Hour}}
	codes := newFakeCodes()
	svc := NewAuthService(cfg, newFakeBusinesses(), &fakeAdmins{byEmail: map[string]*models.Admin{}}, codes)
	return svc, codes
}

var shopReg = BusinessRegistration{
	Name:        "Sharma Traders",
	OwnerName:   "Anil Sharma",
	Email:       "Anil@Example.com",
	PhoneNumber: "+919812345678",
	Password:    "s3cret-pass",
}

func TestRegisterAndLoginBusiness(t *testing.T) {
	svc, _ := newTestAuthService()

	b, err := svc.RegisterBusiness(shopReg)
	if err != nil {
		t.Fatalf("RegisterBusiness: %v", err)
	}
	if b.Email != "anil@example.com" || b.PasswordHash == shopReg.Password {
		t.Fatalf("unexpected business %+v", b)
	}
	if _, err := svc.RegisterBusiness(shopReg); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("second register err = %v, want ErrEmailExists", err)
	}

	if _, _, err := svc.LoginBusiness("anil@example.com", "wrong"); !errors.Is(err, ErrInvalidCreds) {
		t.Fatalf("bad password err = %v", err)
	}
	if _, _, err := svc.LoginBusiness("nobody@example.com", "x"); !errors.Is(err, ErrInvalidCreds) {
		t.Fatalf("unknown email err = %v", err)
	}
	_, token, err := svc.LoginBusiness(" ANIL@example.com ", shopReg.Password)
	if err != nil {
		t.Fatalf("LoginBusiness: %v", err)
	}
	claims, err := auth.ParseAccessToken(&svc.cfg.JWT, token)
	if err != nil || claims.Role != domain.RoleBusiness || claims.AccountID != b.ID {
		t.Fatalf("claims = %+v, err = %v", claims, err)
	}

	b.IsActive = false
	if _, _, err := svc.LoginBusiness(b.Email, shopReg.Password); !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("blocked login err = %v", err)
	}
}

func TestRegisterWithCode(t *testing.T) {
	svc, codes := newTestAuthService()
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	valid, _ := codes.Create("Sharma Traders", now.AddDate(0, 0, 7), nil)
	expired, _ := codes.Create("Late Shop", now.Add(-time.Hour), nil)

	tests := []struct {
		name  string
		email string
		code  string
		want  error
	}{
		{"unknown code", "a@example.com", "ZZZZ-ZZZZ", ErrInvalidAccessCode},
		{"expired code", "b@example.com", expired.Code, ErrAccessCodeExpired},
		{"valid code", "c@example.com", valid.Code, nil},
		{"code already used", "d@example.com", valid.Code, ErrInvalidAccessCode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := shopReg
			reg.Email = tt.email
			b, err := svc.RegisterWithCode(reg, tt.code)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if tt.want == nil && (b.AccessCodeID == nil || *b.AccessCodeID != valid.ID) {
				t.Fatalf("business not linked to code: %+v", b)
			}
		})
	}
}

func TestAdminLoginAndCreate(t *testing.T) {
	svc, _ := newTestAuthService()

	a, created, err := svc.CreateAdmin("Root", "Root@Example.com", "admin-pass")
	if err != nil || !created {
		t.Fatalf("CreateAdmin: created=%v err=%v", created, err)
	}
	again, created, err := svc.CreateAdmin("Other", "root@example.com", "x")
	if err != nil || created || again.ID != a.ID {
		t.Fatalf("duplicate CreateAdmin: created=%v err=%v", created, err)
	}

	if _, _, err := svc.LoginAdmin("root@example.com", "nope"); !errors.Is(err, ErrInvalidCreds) {
		t.Fatalf("bad password err = %v", err)
	}
	_, token, err := svc.LoginAdmin("root@example.com", "admin-pass")
	if err != nil {
		t.Fatal(err)
	}
	claims, err := auth.ParseAccessToken(&svc.cfg.JWT, token)
	if err != nil || claims.Role != domain.RoleAdmin {
		t.Fatalf("claims = %+v, err = %v", claims, err)
	}
}
