package handlers

import (
	"errors"
	"net/http"

	"guardlog-backend/internal/store"
)

// writeServiceError maps the store's error kinds onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var fkErr *store.ForeignKeyError

	switch {
	case errors.Is(err, store.ErrDuplicateKey):
		http.Error(w, "Already registered", http.StatusConflict)
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, "", http.StatusNotFound)
	case errors.Is(err, store.ErrInvalidArgument):
		sugar.Debug(err)
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &fkErr):
		sugar.Debug(err)
		http.Error(w, fkErr.Error(), http.StatusBadRequest)
	default:
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
	}
}
