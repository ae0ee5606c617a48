package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stemsi/kelasops-backend/internal/model"
	"github.com/stemsi/kelasops-backend/internal/response"
	"github.com/stemsi/kelasops-backend/internal/service"
	"github.com/stemsi/kelasops-backend/internal/validator"
)

// AssignmentHandler handles assignment slot management, the validation
// gate, and candidate recommendations.
type AssignmentHandler struct {
	assignmentService     *service.AssignmentService
	recommendationService *service.RecommendationService
}

// NewAssignmentHandler creates a new AssignmentHandler.
func NewAssignmentHandler(assignmentService *service.AssignmentService, recommendationService *service.RecommendationService) *AssignmentHandler {
	return &AssignmentHandler{
		assignmentService:     assignmentService,
		recommendationService: recommendationService,
	}
}

// ListSlots godoc
// GET /api/v1/admin/assignment-slots?grade=&status=&classification=
func (h *AssignmentHandler) ListSlots(c *gin.Context) {
	slots, err := h.assignmentService.List(c.Request.Context(),
		c.Query("grade"),
		model.SlotStatus(c.Query("status")),
		model.Classification(c.Query("classification")))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"slots": slots})
}

// GetSlot godoc
// GET /api/v1/admin/assignment-slots/:id
func (h *AssignmentHandler) GetSlot(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	slot, err := h.assignmentService.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"slot": slot})
}

// SlotRequest is the payload for creating or updating an assignment slot.
type SlotRequest struct {
	Grade           string     `json:"grade" binding:"required,min=1,max=20"`
	Subject         string     `json:"subject" binding:"required,min=1,max=120"`
	SlotName        string     `json:"slot_name" binding:"required,min=1,max=120"`
	Weekdays        []string   `json:"weekdays" binding:"required,min=1,dive,min=1"`
	TimeStart       string     `json:"time_start" binding:"required,len=5"`
	TimeEnd         string     `json:"time_end" binding:"required,len=5"`
	DurationMinutes int        `json:"duration_minutes" binding:"required,min=1"`
	Capacity        int        `json:"capacity" binding:"required,min=1"`
	Curriculum      string     `json:"curriculum" binding:"max=120"`
	BatchStart      *time.Time `json:"batch_start"`
	BatchEnd        *time.Time `json:"batch_end"`
	Classification  string     `json:"classification" binding:"required,oneof=MANDATORY NON_MANDATORY"`
	TeacherID       *int       `json:"teacher_id"`
	MentorID        *int       `json:"mentor_id"`
}

func (r *SlotRequest) toModel() *model.AssignmentSlot {
	return &model.AssignmentSlot{
		Grade:           r.Grade,
		Subject:         r.Subject,
		SlotName:        r.SlotName,
		Weekdays:        r.Weekdays,
		TimeStart:       r.TimeStart,
		TimeEnd:         r.TimeEnd,
		DurationMinutes: r.DurationMinutes,
		Capacity:        r.Capacity,
		Curriculum:      r.Curriculum,
		BatchStart:      r.BatchStart,
		BatchEnd:        r.BatchEnd,
		Classification:  model.Classification(r.Classification),
		TeacherID:       r.TeacherID,
		MentorID:        r.MentorID,
	}
}

// CreateSlot godoc
// POST /api/v1/admin/assignment-slots
// Creates a slot in PENDING status. Never gated.
func (h *AssignmentHandler) CreateSlot(c *gin.Context) {
	var req SlotRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	slot := req.toModel()
	if err := h.assignmentService.Create(c.Request.Context(), slot); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // unknown teacher/mentor
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"slot": slot})
}

// UpdateSlot godoc
// PUT /api/v1/admin/assignment-slots/:id
// Updates descriptive fields. Status and teacher go through their own
// gated endpoints.
func (h *AssignmentHandler) UpdateSlot(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req SlotRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	existing, err := h.assignmentService.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	slot := req.toModel()
	slot.ID = id
	slot.Status = existing.Status

	if err := h.assignmentService.Update(c.Request.Context(), slot); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	updated, _ := h.assignmentService.GetByID(c.Request.Context(), id)
	response.Success(c, http.StatusOK, gin.H{"slot": updated})
}

// DeleteSlot godoc
// DELETE /api/v1/admin/assignment-slots/:id
func (h *AssignmentHandler) DeleteSlot(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.assignmentService.Delete(c.Request.Context(), id); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "slot deleted successfully"})
}

// ChangeStatusRequest is the payload for a status transition.
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=OPEN PENDING UPCOMING CLOSED"`
	Force  bool   `json:"force"`
}

// ChangeStatus godoc
// POST /api/v1/admin/assignment-slots/:id/status
// Transitions a slot's status. Activating a mandatory slot is gated by
// validation; a failed gate returns 422 with the validation result unless
// force is set.
func (h *AssignmentHandler) ChangeStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req ChangeStatusRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.assignmentService.ChangeStatus(c.Request.Context(), id, model.SlotStatus(req.Status), req.Force)
	if err != nil {
		h.failGated(c, result, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"validation": result})
}

// AssignTeacherRequest is the payload for assigning or clearing a teacher.
type AssignTeacherRequest struct {
	TeacherID *int `json:"teacher_id"`
	Force     bool `json:"force"`
}

// AssignTeacher godoc
// POST /api/v1/admin/assignment-slots/:id/teacher
// Assigns (or clears, with null) the slot's teacher. Gated for mandatory
// slots like a status activation.
func (h *AssignmentHandler) AssignTeacher(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req AssignTeacherRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.assignmentService.AssignTeacher(c.Request.Context(), id, req.TeacherID, req.Force)
	if err != nil {
		h.failGated(c, result, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"validation": result})
}

// AssignMentorRequest is the payload for assigning or clearing a mentor.
type AssignMentorRequest struct {
	MentorID *int `json:"mentor_id"`
}

// AssignMentor godoc
// POST /api/v1/admin/assignment-slots/:id/mentor
func (h *AssignmentHandler) AssignMentor(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req AssignMentorRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.assignmentService.AssignMentor(c.Request.Context(), id, req.MentorID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "mentor updated successfully"})
}

// ValidateSlotRequest optionally proposes a teacher for the dry run.
type ValidateSlotRequest struct {
	TeacherID *int `json:"teacher_id"`
}

// ValidateSlot godoc
// POST /api/v1/admin/assignment-slots/:id/validate
// Dry-run validation: checks the stored slot (with an optionally proposed
// teacher) against observed sessions without writing anything.
func (h *AssignmentHandler) ValidateSlot(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req ValidateSlotRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.assignmentService.Validate(c.Request.Context(), id, req.TeacherID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"validation": result})
}

// GetRecommendations godoc
// GET /api/v1/admin/assignment-slots/:id/recommendations?kind=teacher|mentor&period=
// Ranked candidate list for staffing the slot.
func (h *AssignmentHandler) GetRecommendations(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	kind := service.RecommendKind(c.DefaultQuery("kind", string(service.RecommendTeacher)))
	if kind != service.RecommendTeacher && kind != service.RecommendMentor {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	slot, err := h.assignmentService.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	candidates, err := h.recommendationService.Recommend(c.Request.Context(),
		kind, slot.Subject, slot.Grade, slot.Classification, c.Query("period"))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"candidates": candidates})
}

// failGated maps gated-operation failures. A validation block is 422 and
// still carries the result so the UI can render errors and warnings.
func (h *AssignmentHandler) failGated(c *gin.Context, result *model.ValidationResult, err error) {
	switch {
	case errors.Is(err, service.ErrValidationBlocked):
		response.FailWithData(c, http.StatusUnprocessableEntity, response.ErrNotCorroborated,
			gin.H{"validation": result})
	case errors.Is(err, pgx.ErrNoRows):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
