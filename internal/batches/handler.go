package batches

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"applygen-backend/internal/catalog"
	"applygen-backend/internal/queue"
	"applygen-backend/internal/shared/config"
	"applygen-backend/internal/shared/server/middleware"
	"applygen-backend/internal/shared/server/respond"
	"applygen-backend/internal/shared/telemetry"
)

const maxBodyBytes = 1 << 20

// Handler wires HTTP handlers to the batch service.
type Handler struct {
	Svc     *Service
	Catalog *catalog.Catalog
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, cat *catalog.Catalog) *Handler {
	return &Handler{Svc: svc, Catalog: cat}
}

// RegisterRoutes attaches batch routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/catalog", h.catalog)
	rg.POST("/batches", h.create)
	rg.GET("/batches", h.list)
	rg.GET("/batches/:id", h.get)
	rg.GET("/batches/:id/archive", h.archive)
	rg.POST("/batches/:id/entries/:entryId/answers", h.answer)
}

type catalogResponse struct {
	Countries       []string            `json:"countries"`
	EducationLevels []string            `json:"educationLevels"`
	CountBounds     catalog.CountBounds `json:"countBounds"`
}

func (h *Handler) catalog(c *gin.Context) {
	respond.OK(c, catalogResponse{
		Countries:       h.Catalog.CountryNames(),
		EducationLevels: h.Catalog.EducationLevels(),
		CountBounds:     h.Catalog.CountBounds(),
	})
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
		return
	}

	var req CreateRequest
	if err := decodeJSON(c.Request.Body, &req); err != nil {
		respond.Error(c, http.StatusBadRequest, "INVALID_INPUT", err.Error(), nil)
		return
	}

	ctx := queue.WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	b, queued, err := h.Svc.Create(ctx, userID, req)
	if err != nil {
		writeError(c, err, "failed to create batch")
		return
	}
	c.Set("batchId", b.ID)
	if queued {
		respond.JSON(c, http.StatusAccepted, toBatchResponse(b))
		return
	}
	respond.JSON(c, http.StatusCreated, toBatchResponse(b))
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}
	if limit > 50 {
		limit = 50
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	items, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		writeError(c, err, "failed to list batches")
		return
	}
	resp := make([]BatchResponse, 0, len(items))
	for _, b := range items {
		resp = append(resp, toBatchResponse(b))
	}
	respond.OK(c, resp)
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	batchID := c.Param("id")
	c.Set("batchId", batchID)

	b, err := h.Svc.Get(c.Request.Context(), userID, batchID)
	if err != nil {
		writeError(c, err, "failed to fetch batch")
		return
	}
	respond.OK(c, toBatchResponse(b))
}

func (h *Handler) archive(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	batchID := c.Param("id")
	c.Set("batchId", batchID)

	reader, b, err := h.Svc.OpenArchive(c.Request.Context(), userID, batchID)
	if err != nil {
		writeError(c, err, "failed to load archive")
		return
	}
	defer reader.Close()

	if err := respond.Attachment(c, archiveContentType, b.ArchiveName, b.ArchiveSize, reader); err != nil {
		telemetry.Warn("batch.archive_stream_failed", map[string]any{"batch_id": batchID, "error": err.Error()})
	}
}

func (h *Handler) answer(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	batchID := c.Param("id")
	c.Set("batchId", batchID)

	var req AnswerRequest
	if err := decodeJSON(c.Request.Body, &req); err != nil {
		respond.Error(c, http.StatusBadRequest, "INVALID_INPUT", err.Error(), nil)
		return
	}

	answer, err := h.Svc.Answer(c.Request.Context(), userID, batchID, c.Param("entryId"), req.Question)
	if err != nil {
		writeError(c, err, "failed to answer question")
		return
	}
	respond.OK(c, AnswerResponse{Answer: answer})
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrEmptyInput), errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "INVALID_INPUT", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "batch not found", nil)
	case errors.Is(err, ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "access denied", nil)
	case errors.Is(err, ErrNotReady):
		respond.Error(c, http.StatusConflict, "batch_pending", "archive not ready", nil)
	case errors.Is(err, ErrBatchFailed):
		respond.Error(c, http.StatusUnprocessableEntity, "BATCH_FAILED", err.Error(), nil)
	case errors.Is(err, config.ErrConfiguration):
		respond.Error(c, http.StatusServiceUnavailable, "LLM_NOT_CONFIGURED", "language model is not configured", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}

var errInvalidJSON = errors.New("invalid json body")

func decodeJSON(body io.ReadCloser, out any) error {
	if body == nil {
		return errInvalidJSON
	}
	decoder := json.NewDecoder(io.LimitReader(body, maxBodyBytes))
	if err := decoder.Decode(out); err != nil {
		return errInvalidJSON
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return errInvalidJSON
	}
	return nil
}
