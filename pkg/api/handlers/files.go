package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/jababox/jababox/internal/logger"
	"github.com/jababox/jababox/pkg/compress"
	"github.com/jababox/jababox/pkg/storage"
	"github.com/jababox/jababox/pkg/storage/models"
)

// FileHandler handles file upload, download, rename, and delete.
//
// Uploads may request compression via the compress=true query parameter;
// the payload is then deflated before storage and inflated again on
// download. The coordinator only records which treatment was applied.
type FileHandler struct {
	registry       *storage.Registry
	coordinator    *storage.Coordinator
	codec          compress.Codec
	maxUploadBytes int64
}

// NewFileHandler creates a file handler.
func NewFileHandler(registry *storage.Registry, coordinator *storage.Coordinator, codec compress.Codec, maxUploadBytes int64) *FileHandler {
	return &FileHandler{
		registry:       registry,
		coordinator:    coordinator,
		codec:          codec,
		maxUploadBytes: maxUploadBytes,
	}
}

// Upload stores the request body as a new file in the directory. The file
// name comes from the name query parameter or, for multipart uploads, the
// file part's filename.
//
// POST /api/v1/storage/{dir}/files?name=...&compress=true
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	account := resolveAccount(w, r, h.registry)
	if account == nil {
		return
	}

	dir := resolveDirectory(w, r, h.coordinator, account, chi.URLParam(r, "dir"))
	if dir == nil {
		return
	}

	name := r.URL.Query().Get("name")
	data, uploadName, err := h.readPayload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if name == "" {
		name = uploadName
	}

	state := models.FileStateNormal
	if r.URL.Query().Get("compress") == "true" {
		compressed, err := h.codec.Compress(data)
		if err != nil {
			logger.Error("Failed to compress upload", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		data = compressed
		state = models.FileStateCompressed
	}

	file, err := h.coordinator.AddFile(r.Context(), account, dir, state, name, data)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeOK(w, http.StatusCreated, toFileView(file))
}

var errPayloadTooLarge = errors.New("payload exceeds the maximum upload size")

// readPayload extracts the upload payload from the request: the "file"
// part of a multipart form, or the raw body otherwise. The size cap
// applies in both cases.
func (h *FileHandler) readPayload(r *http.Request) ([]byte, string, error) {
	contentType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if contentType == "multipart/form-data" {
		if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
			return nil, "", err
		}
		part, header, err := r.FormFile("file")
		if err != nil {
			return nil, "", err
		}
		defer part.Close()

		data, err := io.ReadAll(io.LimitReader(part, h.maxUploadBytes+1))
		if err != nil {
			return nil, "", err
		}
		if int64(len(data)) > h.maxUploadBytes {
			return nil, "", errPayloadTooLarge
		}
		return data, filepath.Base(header.Filename), nil
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, h.maxUploadBytes+1))
	if err != nil {
		return nil, "", err
	}
	if int64(len(data)) > h.maxUploadBytes {
		return nil, "", errPayloadTooLarge
	}
	return data, "", nil
}

// Download streams a file's payload back, inflating it first if it was
// stored compressed.
//
// GET /api/v1/storage/{dir}/files/{file}
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	account := resolveAccount(w, r, h.registry)
	if account == nil {
		return
	}

	dir := resolveDirectory(w, r, h.coordinator, account, chi.URLParam(r, "dir"))
	if dir == nil {
		return
	}
	file := resolveFile(w, r, h.coordinator, account, dir, chi.URLParam(r, "file"))
	if file == nil {
		return
	}

	data, err := h.coordinator.GetFileData(r.Context(), account, dir, file)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if file.State == models.FileStateCompressed {
		data, err = h.codec.Decompress(data)
		if err != nil {
			logger.Error("Failed to decompress payload",
				"account", account.Login, "file", file.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Name}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Rename renames a file within its directory.
//
// PUT /api/v1/storage/{dir}/files/{file}
func (h *FileHandler) Rename(w http.ResponseWriter, r *http.Request) {
	account := resolveAccount(w, r, h.registry)
	if account == nil {
		return
	}

	dir := resolveDirectory(w, r, h.coordinator, account, chi.URLParam(r, "dir"))
	if dir == nil {
		return
	}
	file := resolveFile(w, r, h.coordinator, account, dir, chi.URLParam(r, "file"))
	if file == nil {
		return
	}

	var req renameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.coordinator.RenameFile(r.Context(), account, dir, file, req.NewName); err != nil {
		writeDomainError(w, err)
		return
	}

	file.Name = req.NewName
	writeOK(w, http.StatusOK, toFileView(file))
}

// Delete removes a file and its payload.
//
// DELETE /api/v1/storage/{dir}/files/{file}
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	account := resolveAccount(w, r, h.registry)
	if account == nil {
		return
	}

	dir := resolveDirectory(w, r, h.coordinator, account, chi.URLParam(r, "dir"))
	if dir == nil {
		return
	}
	file := resolveFile(w, r, h.coordinator, account, dir, chi.URLParam(r, "file"))
	if file == nil {
		return
	}

	if err := h.coordinator.DeleteFile(r.Context(), account, dir, file); err != nil {
		writeDomainError(w, err)
		return
	}

	writeOK(w, http.StatusOK, map[string]string{"message": "file deleted"})
}
