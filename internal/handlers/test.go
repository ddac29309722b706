package handlers

import (
	"fmt"
	"net/http"

	"guardlog-backend/internal/hub"
)

func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	_, err := fmt.Fprint(w, `{"status":"ok"}`)
	if err != nil {
		sugar.Error(err)
		return
	}
}

// Feed hands the verified session over to the hub's websocket loop.
func Feed(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Context().Value(SessionIDKeyType{}).(string)
	hub.HandleFeed(sessionID, w, r)
}
