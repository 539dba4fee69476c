package service

import (
	"context"
	"fmt"

	"github.com/mkwawa-heritage/marketplace-api/internal/domain"
	"github.com/mkwawa-heritage/marketplace-api/internal/repository"
)

var (
	ErrStaffNotFound = repository.ErrStaffNotFound
)

type StaffRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Staff, error)
}

type StaffService struct {
	repo StaffRepository
}

func NewStaffService(repo StaffRepository) *StaffService {
	return &StaffService{
		repo: repo,
	}
}

func (s *StaffService) GetStaff(ctx context.Context, id uint) (domain.Staff, error) {
	staff, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Staff{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return staff, nil
}
