package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/kelasops-backend/internal/model"
	"github.com/stemsi/kelasops-backend/internal/response"
	"github.com/stemsi/kelasops-backend/internal/service"
	"github.com/stemsi/kelasops-backend/internal/validator"
)

// NormalizationHandler handles the slot normalization registry.
type NormalizationHandler struct {
	normService *service.NormalizationService
}

// NewNormalizationHandler creates a new NormalizationHandler.
func NewNormalizationHandler(normService *service.NormalizationService) *NormalizationHandler {
	return &NormalizationHandler{normService: normService}
}

// ListRules godoc
// GET /api/v1/admin/normalization-rules
func (h *NormalizationHandler) ListRules(c *gin.Context) {
	rules, err := h.normService.ListRules(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"rules": rules})
}

// CreateRuleRequest is the payload for adding a normalization rule.
type CreateRuleRequest struct {
	Grade         string `json:"grade" binding:"required,min=1,max=20"`
	ObservedName  string `json:"observed_name" binding:"required,min=1,max=120"`
	CanonicalName string `json:"canonical_name" binding:"required,min=1,max=120"`
	Notes         string `json:"notes" binding:"max=500"`
}

// CreateRule godoc
// POST /api/v1/admin/normalization-rules
// Appends a rule. Overlapping rules are allowed; the newest wins on resolve.
func (h *NormalizationHandler) CreateRule(c *gin.Context) {
	var req CreateRuleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	author := ""
	if admin := currentAdminSubject(c); admin != "" {
		author = admin
	}

	rule := &model.SlotNormalizationRule{
		Grade:         req.Grade,
		ObservedName:  req.ObservedName,
		CanonicalName: req.CanonicalName,
		Notes:         req.Notes,
		CreatedBy:     author,
	}

	if err := h.normService.AddRule(c.Request.Context(), rule); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"rule": rule})
}

// DeleteRule godoc
// DELETE /api/v1/admin/normalization-rules/:id
func (h *NormalizationHandler) DeleteRule(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.normService.DeleteRule(c.Request.Context(), id); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "rule deleted successfully"})
}

// Resolve godoc
// GET /api/v1/admin/normalization-rules/resolve?grade=&observed_name=
// Resolves an observed slot name to its canonical form. Pass-through when
// no rule exists.
func (h *NormalizationHandler) Resolve(c *gin.Context) {
	grade := c.Query("grade")
	observed := c.Query("observed_name")
	if grade == "" || observed == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	canonical, err := h.normService.Resolve(c.Request.Context(), grade, observed)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"canonical_name": canonical})
}

// ListUnmatched godoc
// GET /api/v1/admin/normalization-rules/unmatched
// Observed (grade, slot) pairs no assignment slot covers, with the number
// of affected sessions per pair.
func (h *NormalizationHandler) ListUnmatched(c *gin.Context) {
	unmatched, err := h.normService.ListUnmatched(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"unmatched": unmatched})
}
