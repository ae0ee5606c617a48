package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stemsi/kelasops-backend/internal/model"
	"github.com/stemsi/kelasops-backend/internal/response"
	"github.com/stemsi/kelasops-backend/internal/service"
	"github.com/stemsi/kelasops-backend/internal/validator"
)

// TeacherHandler handles roster management (CRUD + capabilities).
type TeacherHandler struct {
	teacherService *service.TeacherService
}

// NewTeacherHandler creates a new TeacherHandler.
func NewTeacherHandler(teacherService *service.TeacherService) *TeacherHandler {
	return &TeacherHandler{teacherService: teacherService}
}

// ListTeachers godoc
// GET /api/v1/admin/teachers
func (h *TeacherHandler) ListTeachers(c *gin.Context) {
	teachers, err := h.teacherService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"teachers": teachers})
}

// GetTeacher godoc
// GET /api/v1/admin/teachers/:id
// Returns the teacher with their capability records.
func (h *TeacherHandler) GetTeacher(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	teacher, err := h.teacherService.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	caps, err := h.teacherService.ListCapabilities(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"teacher": teacher, "capabilities": caps})
}

// TeacherRequest is the payload for creating or updating a teacher.
type TeacherRequest struct {
	Name   string `json:"name" binding:"required,min=1,max=120"`
	Email  string `json:"email" binding:"required,email"`
	Active *bool  `json:"active" binding:"required"`
}

// CreateTeacher godoc
// POST /api/v1/admin/teachers
func (h *TeacherHandler) CreateTeacher(c *gin.Context) {
	var req TeacherRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	teacher := &model.Teacher{Name: req.Name, Email: req.Email, Active: *req.Active}
	if err := h.teacherService.Create(c.Request.Context(), teacher); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"teacher": teacher})
}

// UpdateTeacher godoc
// PUT /api/v1/admin/teachers/:id
func (h *TeacherHandler) UpdateTeacher(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req TeacherRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	teacher := &model.Teacher{ID: id, Name: req.Name, Email: req.Email, Active: *req.Active}
	if err := h.teacherService.Update(c.Request.Context(), teacher); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	updated, _ := h.teacherService.GetByID(c.Request.Context(), id)
	response.Success(c, http.StatusOK, gin.H{"teacher": updated})
}

// DeleteTeacher godoc
// DELETE /api/v1/admin/teachers/:id
func (h *TeacherHandler) DeleteTeacher(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.teacherService.Delete(c.Request.Context(), id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			response.Fail(c, http.StatusConflict, response.ErrDependencyExists)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "teacher deleted successfully"})
}

// CapabilityRequest is the payload for adding a capability record.
type CapabilityRequest struct {
	Subject string `json:"subject" binding:"required,min=1,max=120"`
	Grade   string `json:"grade" binding:"required,min=1,max=20"`
	Tier    string `json:"tier" binding:"required,oneof=L1 L2 L3 L4 M1 M2"`
}

// AddCapability godoc
// POST /api/v1/admin/teachers/:id/capabilities
func (h *TeacherHandler) AddCapability(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req CapabilityRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	capability := &model.TeacherCapability{
		TeacherID: id,
		Subject:   req.Subject,
		Grade:     req.Grade,
		Tier:      model.LevelingTier(req.Tier),
	}
	if err := h.teacherService.AddCapability(c.Request.Context(), capability); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"capability": capability})
}

// DeleteCapability godoc
// DELETE /api/v1/admin/teachers/:id/capabilities/:capability_id
func (h *TeacherHandler) DeleteCapability(c *gin.Context) {
	capID, err := strconv.Atoi(c.Param("capability_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.teacherService.DeleteCapability(c.Request.Context(), capID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "capability deleted successfully"})
}
