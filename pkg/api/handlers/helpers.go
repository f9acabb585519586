package handlers

import (
	"net/http"

	"github.com/jababox/jababox/pkg/api/middleware"
	"github.com/jababox/jababox/pkg/storage"
	"github.com/jababox/jababox/pkg/storage/models"
)

// resolveAccount loads the authenticated account from the request's JWT
// claims. Writes the error response itself and returns nil when the
// request cannot be tied to a live account.
func resolveAccount(w http.ResponseWriter, r *http.Request, registry *storage.Registry) *models.Account {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return nil
	}

	account, err := registry.GetAccountByID(r.Context(), claims.AccountID)
	if err != nil {
		// The token can outlive the account.
		if models.IsNotFound(err) {
			writeError(w, http.StatusUnauthorized, "account no longer exists")
			return nil
		}
		writeDomainError(w, err)
		return nil
	}
	return account
}

// resolveDirectory looks up the named directory under the account. Writes
// a 404 and returns nil when it does not exist.
func resolveDirectory(w http.ResponseWriter, r *http.Request, coordinator *storage.Coordinator, account *models.Account, name string) *models.DirectoryEntry {
	dir, err := coordinator.FindDirectory(r.Context(), account, name)
	if err != nil {
		writeDomainError(w, err)
		return nil
	}
	if dir == nil {
		writeError(w, http.StatusNotFound, "directory \""+name+"\" not found")
		return nil
	}
	return dir
}

// resolveFile looks up the named file in the directory. Writes a 404 and
// returns nil when it does not exist.
func resolveFile(w http.ResponseWriter, r *http.Request, coordinator *storage.Coordinator, account *models.Account, dir *models.DirectoryEntry, name string) *models.FileRecord {
	file, err := coordinator.FindFile(r.Context(), account, dir, name)
	if err != nil {
		writeDomainError(w, err)
		return nil
	}
	if file == nil {
		writeError(w, http.StatusNotFound, "file \""+name+"\" not found")
		return nil
	}
	return file
}
