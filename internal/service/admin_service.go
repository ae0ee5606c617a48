package service

import (
	"context"

	"github.com/stemsi/kelasops-backend/internal/model"
	"github.com/stemsi/kelasops-backend/internal/repository"
)

// AdminService handles admin account business logic.
type AdminService struct {
	adminRepo *repository.AdminRepository
}

// NewAdminService creates a new AdminService.
func NewAdminService(adminRepo *repository.AdminRepository) *AdminService {
	return &AdminService{adminRepo: adminRepo}
}

// GetByEmail retrieves an admin by email.
func (s *AdminService) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	return s.adminRepo.GetByEmail(ctx, email)
}

// GetByID retrieves an admin by ID.
func (s *AdminService) GetByID(ctx context.Context, id int) (*model.Admin, error) {
	return s.adminRepo.GetByID(ctx, id)
}

// Create inserts a new admin account.
func (s *AdminService) Create(ctx context.Context, a *model.Admin) error {
	return s.adminRepo.Create(ctx, a)
}
