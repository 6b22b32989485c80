package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/courier/internal/storage"
)

// UploadHandler stores chat attachments and hands back their public URL.
type UploadHandler struct {
	store storage.Store
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(store storage.Store) *UploadHandler {
	return &UploadHandler{store: store}
}

// Upload accepts one multipart file and returns the URL the client should
// put in the outgoing message's file field (POST /api/upload).
func (h *UploadHandler) Upload(c echo.Context) error {
	header, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "no file provided"})
	}

	src, err := header.Open()
	if err != nil {
		slog.Error("Failed to open uploaded file", "filename", header.Filename, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not read upload"})
	}
	defer src.Close()

	key := storage.ObjectKey(header.Filename)
	url, err := h.store.Save(c.Request().Context(), key, header.Header.Get(echo.HeaderContentType), src)
	if err != nil {
		slog.Error("Failed to store upload", "key", key, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not store upload"})
	}

	return c.JSON(http.StatusOK, map[string]string{"url": url})
}
