package service

import (
	"context"

	"github.com/stemsi/kelasops-backend/internal/model"
	"github.com/stemsi/kelasops-backend/internal/repository"
)

// TeacherService handles roster business logic.
type TeacherService struct {
	teacherRepo *repository.TeacherRepository
}

// NewTeacherService creates a new TeacherService.
func NewTeacherService(teacherRepo *repository.TeacherRepository) *TeacherService {
	return &TeacherService{teacherRepo: teacherRepo}
}

// GetByID retrieves a teacher by ID.
func (s *TeacherService) GetByID(ctx context.Context, id int) (*model.Teacher, error) {
	return s.teacherRepo.GetByID(ctx, id)
}

// List retrieves all teachers.
func (s *TeacherService) List(ctx context.Context) ([]model.Teacher, error) {
	return s.teacherRepo.List(ctx)
}

// Create inserts a new teacher.
func (s *TeacherService) Create(ctx context.Context, t *model.Teacher) error {
	return s.teacherRepo.Create(ctx, t)
}

// Update modifies an existing teacher.
func (s *TeacherService) Update(ctx context.Context, t *model.Teacher) error {
	return s.teacherRepo.Update(ctx, t)
}

// Delete removes a teacher.
// Foreign keys on assignment_slots null out the reference rather than
// blocking the delete; capabilities and utilization rows cascade.
func (s *TeacherService) Delete(ctx context.Context, id int) error {
	return s.teacherRepo.Delete(ctx, id)
}

// ListCapabilities retrieves a teacher's capability records.
func (s *TeacherService) ListCapabilities(ctx context.Context, teacherID int) ([]model.TeacherCapability, error) {
	return s.teacherRepo.ListCapabilities(ctx, teacherID)
}

// AddCapability adds a (subject, grade, tier) record to a teacher.
func (s *TeacherService) AddCapability(ctx context.Context, c *model.TeacherCapability) error {
	return s.teacherRepo.AddCapability(ctx, c)
}

// DeleteCapability removes a capability record.
func (s *TeacherService) DeleteCapability(ctx context.Context, id int) error {
	return s.teacherRepo.DeleteCapability(ctx, id)
}
