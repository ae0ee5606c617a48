package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/kelasops-backend/internal/metabase"
	"github.com/stemsi/kelasops-backend/internal/repository"
	"github.com/stemsi/kelasops-backend/internal/response"
	"github.com/stemsi/kelasops-backend/internal/service"
)

// SyncHandler handles the ingestion pipeline trigger and read access to the
// observed-session store.
type SyncHandler struct {
	syncService *service.SyncService
	sessionRepo *repository.ObservedSessionRepository
}

// NewSyncHandler creates a new SyncHandler.
func NewSyncHandler(syncService *service.SyncService, sessionRepo *repository.ObservedSessionRepository) *SyncHandler {
	return &SyncHandler{syncService: syncService, sessionRepo: sessionRepo}
}

// RunSync godoc
// POST /api/v1/admin/sync
// Runs a full resync against Metabase. Rejected with 409 while another
// sync holds the lock. Synchronous — the response carries the report.
func (h *SyncHandler) RunSync(c *gin.Context) {
	report, err := h.syncService.Resync(c.Request.Context())
	if err != nil {
		h.failSync(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"report": report})
}

// GetLastReport godoc
// GET /api/v1/admin/sync/last
// Returns the most recent sync report, or null when none is cached.
func (h *SyncHandler) GetLastReport(c *gin.Context) {
	report, err := h.syncService.LastReport(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"report": report})
}

// ListObservedSessions godoc
// GET /api/v1/admin/observed-sessions?grade=&slot_name=
// Read-only listing of the observed-session store.
func (h *SyncHandler) ListObservedSessions(c *gin.Context) {
	sessions, err := h.sessionRepo.List(c.Request.Context(), c.Query("grade"), c.Query("slot_name"))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"sessions": sessions})
}

// failSync maps pipeline errors onto stage-specific codes so the UI can
// tell an aborted sync from a half-failed one.
func (h *SyncHandler) failSync(c *gin.Context, err error) {
	var authErr *metabase.AuthError
	var fetchErr *metabase.FetchError
	var batchErr *service.BatchInsertError

	switch {
	case errors.Is(err, service.ErrSyncInProgress):
		response.Fail(c, http.StatusConflict, response.ErrSyncInProgress)
	case errors.Is(err, service.ErrEmptyDataset):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrSyncEmptyDataset)
	case errors.As(err, &authErr):
		response.Fail(c, http.StatusBadGateway, response.ErrSyncAuthFailed)
	case errors.As(err, &fetchErr):
		response.Fail(c, http.StatusBadGateway, response.ErrSyncFetchFailed)
	case errors.As(err, &batchErr):
		response.FailWithFields(c, http.StatusInternalServerError, response.ErrSyncBatchFailed,
			map[string]string{"batch": batchErr.Error()})
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
