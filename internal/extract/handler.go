package extract

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"applygen-backend/internal/shared/server/middleware"
	"applygen-backend/internal/shared/server/respond"
	"applygen-backend/internal/shared/storage/object"
)

const maxUploadBytes = 5 << 20

// Handler serves job description uploads.
type Handler struct {
	Store object.ObjectStore
}

// NewHandler constructs a Handler.
func NewHandler(store object.ObjectStore) *Handler {
	return &Handler{Store: store}
}

// RegisterRoutes attaches extraction routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/job-descriptions/extract", h.extract)
}

// Response is the body returned for an extracted job description.
type Response struct {
	Text  string `json:"text"`
	Chars int    `json:"chars"`
}

func (h *Handler) extract(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	fh, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "INVALID_INPUT", "file is required", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "INVALID_INPUT", "unreadable upload", nil)
		return
	}
	defer f.Close()

	ctx := c.Request.Context()
	key, _, mimeType, err := object.Save(ctx, h.Store, userID, fh.Filename, f)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "INVALID_INPUT", "invalid upload", nil)
		return
	}

	text, err := ExtractText(ctx, h.Store, key, mimeType, fh.Filename)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnsupported):
			respond.Error(c, http.StatusUnsupportedMediaType, "UNSUPPORTED_TYPE", "upload a PDF, DOCX or text file", nil)
		case errors.Is(err, ErrNoText):
			respond.Error(c, http.StatusUnprocessableEntity, "NO_TEXT", "no text found in document", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to extract text", nil)
		}
		return
	}
	respond.OK(c, Response{Text: text, Chars: len([]rune(text))})
}
