package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/courier/internal/storage"
)

func newUploadTestServer(t *testing.T) (*echo.Echo, afero.Fs) {
	t.Helper()

	fs := afero.NewMemMapFs()
	handler := NewUploadHandler(storage.NewAferoStore(fs, "http://localhost:4040/uploads"))

	e := echo.New()
	e.POST("/api/upload", handler.Upload)
	return e, fs
}

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestUpload(t *testing.T) {
	t.Run("stores the file and returns its URL", func(t *testing.T) {
		e, fs := newUploadTestServer(t)

		body, contentType := multipartBody(t, "file", "cat.png", "png bytes")
		req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
		req.Header.Set(echo.HeaderContentType, contentType)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "http://localhost:4040/uploads/")
		assert.Contains(t, rec.Body.String(), ".png")

		// Exactly one object was written.
		infos, err := afero.ReadDir(fs, "")
		require.NoError(t, err)
		var saved int
		for _, info := range infos {
			if !info.IsDir() {
				saved++
			}
		}
		assert.Equal(t, 1, saved)
	})

	t.Run("rejects requests without a file part", func(t *testing.T) {
		e, _ := newUploadTestServer(t)

		body, contentType := multipartBody(t, "attachment", "cat.png", "png bytes")
		req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
		req.Header.Set(echo.HeaderContentType, contentType)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"no file provided"}`, rec.Body.String())
	})
}
