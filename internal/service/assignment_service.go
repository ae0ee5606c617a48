package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/stemsi/kelasops-backend/internal/model"
	"github.com/stemsi/kelasops-backend/internal/repository"
)

// ErrValidationBlocked means a gated change was rejected because the
// validation engine could not corroborate it and the caller did not force
// it through. The accompanying ValidationResult says why.
var ErrValidationBlocked = errors.New("change blocked by validation")

// AssignmentService handles assignment-slot lifecycle, including the
// validation gate on mandatory slots.
type AssignmentService struct {
	slotRepo   *repository.AssignmentSlotRepository
	validation *ValidationService
	log        zerolog.Logger
}

// NewAssignmentService creates a new AssignmentService.
func NewAssignmentService(slotRepo *repository.AssignmentSlotRepository, validation *ValidationService, log zerolog.Logger) *AssignmentService {
	return &AssignmentService{
		slotRepo:   slotRepo,
		validation: validation,
		log:        log.With().Str("component", "assignment_service").Logger(),
	}
}

// GetByID retrieves an assignment slot.
func (s *AssignmentService) GetByID(ctx context.Context, id int) (*model.AssignmentSlot, error) {
	return s.slotRepo.GetByID(ctx, id)
}

// List retrieves assignment slots with optional filters.
func (s *AssignmentService) List(ctx context.Context, grade string, status model.SlotStatus, classification model.Classification) ([]model.AssignmentSlot, error) {
	return s.slotRepo.List(ctx, grade, status, classification)
}

// Create inserts a new assignment slot. Creation is never gated — a slot's
// correctness against observed sessions is only asserted, checked on demand.
func (s *AssignmentService) Create(ctx context.Context, slot *model.AssignmentSlot) error {
	if slot.Status == "" {
		slot.Status = model.SlotStatusPending
	}
	return s.slotRepo.Create(ctx, slot)
}

// Update modifies an assignment slot's descriptive fields. Status and
// teacher changes go through their gated operations instead.
func (s *AssignmentService) Update(ctx context.Context, slot *model.AssignmentSlot) error {
	return s.slotRepo.Update(ctx, slot)
}

// Delete removes an assignment slot.
func (s *AssignmentService) Delete(ctx context.Context, id int) error {
	return s.slotRepo.Delete(ctx, id)
}

// Validate runs the validation engine for a slot as it is stored, with the
// optional proposed teacher applied. Dry-run for the UI.
func (s *AssignmentService) Validate(ctx context.Context, id int, proposedTeacherID *int) (*model.ValidationResult, error) {
	slot, err := s.slotRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	teacherID := slot.TeacherID
	if proposedTeacherID != nil {
		teacherID = proposedTeacherID
	}

	return s.validation.Validate(ctx, validateInputFor(slot, slot.Status, teacherID))
}

// ChangeStatus transitions a slot's lifecycle status. For mandatory slots a
// transition into an active status is gated: unless force is set, the
// change is rejected with ErrValidationBlocked when validation fails. The
// returned result is always populated for gated transitions so the UI can
// show warnings even on success.
func (s *AssignmentService) ChangeStatus(ctx context.Context, id int, status model.SlotStatus, force bool) (*model.ValidationResult, error) {
	slot, err := s.slotRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var result *model.ValidationResult
	if slot.Classification == model.ClassificationMandatory && status.IsActive() {
		result, err = s.validation.Validate(ctx, validateInputFor(slot, status, slot.TeacherID))
		if err != nil {
			return nil, err
		}
		if !result.Success && !force {
			return result, ErrValidationBlocked
		}
		if !result.Success {
			s.log.Warn().Int("slot_id", id).Str("status", string(status)).
				Msg("Status change forced past failed validation")
		}
	}

	if err := s.slotRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return result, nil
}

// AssignTeacher sets or clears the assigned teacher. Proposing a teacher on
// a mandatory slot is gated the same way as activation; clearing is not.
func (s *AssignmentService) AssignTeacher(ctx context.Context, id int, teacherID *int, force bool) (*model.ValidationResult, error) {
	slot, err := s.slotRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var result *model.ValidationResult
	if slot.Classification == model.ClassificationMandatory && teacherID != nil {
		result, err = s.validation.Validate(ctx, validateInputFor(slot, slot.Status, teacherID))
		if err != nil {
			return nil, err
		}
		if !result.Success && !force {
			return result, ErrValidationBlocked
		}
		if !result.Success {
			s.log.Warn().Int("slot_id", id).Int("teacher_id", *teacherID).
				Msg("Teacher assignment forced past failed validation")
		}
	}

	if err := s.slotRepo.UpdateTeacher(ctx, id, teacherID); err != nil {
		return nil, err
	}
	return result, nil
}

// AssignMentor sets or clears the assigned mentor. Mentors are not
// corroborated by observed sessions, so no gate applies.
func (s *AssignmentService) AssignMentor(ctx context.Context, id int, mentorID *int) error {
	if _, err := s.slotRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.slotRepo.UpdateMentor(ctx, id, mentorID)
}

func validateInputFor(slot *model.AssignmentSlot, status model.SlotStatus, teacherID *int) ValidateInput {
	return ValidateInput{
		SlotID:         &slot.ID,
		Grade:          slot.Grade,
		SlotName:       slot.SlotName,
		Weekdays:       slot.Weekdays,
		TimeStart:      slot.TimeStart,
		TimeEnd:        slot.TimeEnd,
		TeacherID:      teacherID,
		Status:         status,
		Classification: slot.Classification,
	}
}
