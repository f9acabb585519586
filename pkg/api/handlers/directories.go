package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jababox/jababox/pkg/storage"
	"github.com/jababox/jababox/pkg/storage/models"
)

// DirectoryHandler handles directory CRUD for the authenticated account.
type DirectoryHandler struct {
	registry    *storage.Registry
	coordinator *storage.Coordinator
}

// NewDirectoryHandler creates a directory handler.
func NewDirectoryHandler(registry *storage.Registry, coordinator *storage.Coordinator) *DirectoryHandler {
	return &DirectoryHandler{
		registry:    registry,
		coordinator: coordinator,
	}
}

// directoryView is a directory as exposed over the API.
type directoryView struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	FileCount int        `json:"file_count"`
	BytesUsed int64      `json:"bytes_used"`
	Files     []fileView `json:"files,omitempty"`
}

// fileView is a file record as exposed over the API.
type fileView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ByteSize int64  `json:"byte_size"`
	State    string `json:"state"`
}

func toDirectoryView(dir *models.DirectoryEntry, withFiles bool) directoryView {
	view := directoryView{
		ID:        dir.ID,
		Name:      dir.Name,
		FileCount: len(dir.Files),
		BytesUsed: dir.BytesUsed(),
	}
	if withFiles {
		view.Files = make([]fileView, 0, len(dir.Files))
		for _, f := range dir.Files {
			view.Files = append(view.Files, toFileView(&f))
		}
	}
	return view
}

func toFileView(f *models.FileRecord) fileView {
	return fileView{
		ID:       f.ID,
		Name:     f.Name,
		ByteSize: f.ByteSize,
		State:    string(f.State),
	}
}

// List returns every directory of the account.
//
// GET /api/v1/storage
func (h *DirectoryHandler) List(w http.ResponseWriter, r *http.Request) {
	account := resolveAccount(w, r, h.registry)
	if account == nil {
		return
	}

	dirs, err := h.coordinator.ListDirectories(r.Context(), account)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	views := make([]directoryView, 0, len(dirs))
	for _, dir := range dirs {
		views = append(views, toDirectoryView(dir, false))
	}
	writeOK(w, http.StatusOK, views)
}

type createDirectoryRequest struct {
	Name string `json:"name"`
}

// Create creates a new directory.
//
// POST /api/v1/storage
func (h *DirectoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	account := resolveAccount(w, r, h.registry)
	if account == nil {
		return
	}

	var req createDirectoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	dir, err := h.coordinator.CreateDirectory(r.Context(), account, req.Name)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeOK(w, http.StatusCreated, toDirectoryView(dir, false))
}

// Get returns one directory with its files.
//
// GET /api/v1/storage/{dir}
func (h *DirectoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	account := resolveAccount(w, r, h.registry)
	if account == nil {
		return
	}

	dir := resolveDirectory(w, r, h.coordinator, account, chi.URLParam(r, "dir"))
	if dir == nil {
		return
	}

	writeOK(w, http.StatusOK, toDirectoryView(dir, true))
}

type renameRequest struct {
	NewName string `json:"new_name"`
}

// Rename renames a directory.
//
// PUT /api/v1/storage/{dir}
func (h *DirectoryHandler) Rename(w http.ResponseWriter, r *http.Request) {
	account := resolveAccount(w, r, h.registry)
	if account == nil {
		return
	}

	dir := resolveDirectory(w, r, h.coordinator, account, chi.URLParam(r, "dir"))
	if dir == nil {
		return
	}

	var req renameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.coordinator.RenameDirectory(r.Context(), account, dir, req.NewName); err != nil {
		writeDomainError(w, err)
		return
	}

	dir.Name = req.NewName
	writeOK(w, http.StatusOK, toDirectoryView(dir, false))
}

// Delete removes a directory and everything in it.
//
// DELETE /api/v1/storage/{dir}
func (h *DirectoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	account := resolveAccount(w, r, h.registry)
	if account == nil {
		return
	}

	dir := resolveDirectory(w, r, h.coordinator, account, chi.URLParam(r, "dir"))
	if dir == nil {
		return
	}

	if err := h.coordinator.DeleteDirectory(r.Context(), account, dir); err != nil {
		writeDomainError(w, err)
		return
	}

	writeOK(w, http.StatusOK, map[string]string{"message": "directory deleted"})
}
