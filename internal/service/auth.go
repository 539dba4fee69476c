package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dlclark/regexp2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mkwawa-heritage/marketplace-api/internal/domain"
	"github.com/mkwawa-heritage/marketplace-api/internal/repository"
)

const passwordRegexPattern = `^(?=.*[A-Za-z])(?=.*\d).{8,}$`

var (
	ErrStaffEmailExists = repository.ErrStaffEmailExists
	ErrWrongPassword    = errors.New("wrong password")
	ErrWeakPassword     = errors.New("the password must be at least 8 characters and contain 1 letter and 1 number")

	passwordExp = regexp2.MustCompile(passwordRegexPattern, regexp2.None)
)

type AuthStaffRepository interface {
	Create(ctx context.Context, staff domain.Staff) (domain.Staff, error)
	FindByEmail(ctx context.Context, email string) (domain.Staff, error)
}

type AuthService struct {
	repo AuthStaffRepository
	cost int
}

func NewAuthService(repo AuthStaffRepository, bcryptCost int) *AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}

	return &AuthService{
		repo: repo,
		cost: bcryptCost,
	}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (domain.Staff, error) {
	staff, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrStaffNotFound) {
			return domain.Staff{}, ErrStaffNotFound
		}

		return domain.Staff{}, fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(staff.Password), []byte(password)); err != nil {
		return domain.Staff{}, ErrWrongPassword
	}

	return staff, nil
}

// EnsureStaff creates the account unless one already uses its email. The
// returned flag reports whether a new account was stored.
func (s *AuthService) EnsureStaff(ctx context.Context, staff domain.Staff) (domain.Staff, bool, error) {
	existing, err := s.repo.FindByEmail(ctx, staff.Email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrStaffNotFound) {
		return domain.Staff{}, false, fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	if err = ValidatePassword(staff.Password); err != nil {
		return domain.Staff{}, false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(staff.Password), s.cost)
	if err != nil {
		return domain.Staff{}, false, err
	}
	staff.Password = string(hash)

	created, err := s.repo.Create(ctx, staff)
	if err != nil {
		return domain.Staff{}, false, fmt.Errorf("s.repo.Create -> %w", err)
	}

	zap.L().Info("staff account created", zap.Uint("staff_id", created.ID), zap.String("email", created.Email))

	return created, true, nil
}

func ValidatePassword(password string) error {
	ok, err := passwordExp.MatchString(password)
	if err != nil {
		return fmt.Errorf("passwordExp.MatchString -> %w", err)
	}
	if !ok {
		return ErrWeakPassword
	}

	return nil
}
