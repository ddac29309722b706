package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"guardlog-backend/internal/hub"
)

func CreateUser(w http.ResponseWriter, r *http.Request) {
	type UserRequest struct {
		UserID   int64  `json:"user_id" validate:"required"`
		Username string `json:"username" validate:"max=100"`
	}

	var userRequest UserRequest
	err := json.NewDecoder(r.Body).Decode(&userRequest)
	if err != nil {
		sugar.Debug(err)
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	err = validate.Struct(userRequest)
	if err != nil {
		sugar.Debug(err)
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	user, err := service.RegisterUser(userRequest.UserID, userRequest.Username)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	err = hub.Emit(hub.UserRegistered, user)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	err = json.NewEncoder(w).Encode(user)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
}

func DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("userID"), 10, 64)
	if err != nil || userID == 0 {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	removed, err := service.RemoveUser(userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if !removed {
		http.Error(w, "", http.StatusNotFound)
		return
	}

	err = hub.Emit(hub.UserRemoved, userID)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
}

func GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("userID"), 10, 64)
	if err != nil || userID == 0 {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	user, err := service.FindUserByDiscordID(userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	err = json.NewEncoder(w).Encode(user)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
}
