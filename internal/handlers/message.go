package handlers

import (
	"encoding/json"
	"iter"
	"net/http"
	"strconv"

	"guardlog-backend/internal/hub"
	"guardlog-backend/internal/models"
)

func SaveMessage(w http.ResponseWriter, r *http.Request) {
	type SaveMessageRequest struct {
		UserID   *int64 `json:"user_id"`
		ServerID *int64 `json:"server_id"`
		Content  string `json:"content" validate:"max=2000"`
	}

	var messageRequest SaveMessageRequest
	err := json.NewDecoder(r.Body).Decode(&messageRequest)
	if err != nil {
		sugar.Debug(err)
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	err = validate.Struct(messageRequest)
	if err != nil {
		sugar.Debug(err)
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	msg, err := service.LogMessage(messageRequest.UserID, messageRequest.ServerID, messageRequest.Content)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	err = hub.Emit(hub.MessageLogged, msg)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	err = json.NewEncoder(w).Encode(msg)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
}

func ResetMessage(w http.ResponseWriter, r *http.Request) {
	type ResetMessageRequest struct {
		UserID   int64 `json:"user_id" validate:"required"`
		ServerID int64 `json:"server_id" validate:"required"`
	}

	var resetRequest ResetMessageRequest
	err := json.NewDecoder(r.Body).Decode(&resetRequest)
	if err != nil {
		sugar.Debug(err)
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	err = validate.Struct(resetRequest)
	if err != nil {
		sugar.Debug(err)
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	msg, err := service.FindMessageByRefs(resetRequest.UserID, resetRequest.ServerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	reset, err := service.ResetMessage(msg.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if !reset {
		http.Error(w, "", http.StatusNotFound)
		return
	}

	err = hub.Emit(hub.MessageReset, msg.ID)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
}

func DeleteMessage(w http.ResponseWriter, r *http.Request) {
	messageID, err := strconv.ParseInt(r.URL.Query().Get("messageID"), 10, 64)
	if err != nil || messageID == 0 {
		http.Error(w, "Invalid message ID", http.StatusBadRequest)
		return
	}

	removed, err := service.RemoveMessage(messageID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if !removed {
		http.Error(w, "", http.StatusNotFound)
		return
	}

	err = hub.Emit(hub.MessageDeleted, messageID)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
}

func GetMessage(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("userID"), 10, 64)
	if err != nil || userID == 0 {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	serverID, err := strconv.ParseInt(r.URL.Query().Get("serverID"), 10, 64)
	if err != nil || serverID == 0 {
		http.Error(w, "Invalid server ID", http.StatusBadRequest)
		return
	}

	msg, err := service.FindMessageByRefs(userID, serverID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	err = json.NewEncoder(w).Encode(msg)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
}

func ListMessagesByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("userID"), 10, 64)
	if err != nil || userID == 0 {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	writeMessageList(w, service.ListMessagesByUser(userID))
}

func ListMessagesByServer(w http.ResponseWriter, r *http.Request) {
	serverID, err := strconv.ParseInt(r.URL.Query().Get("serverID"), 10, 64)
	if err != nil || serverID == 0 {
		http.Error(w, "Invalid server ID", http.StatusBadRequest)
		return
	}

	writeMessageList(w, service.ListMessagesByServer(serverID))
}

func writeMessageList(w http.ResponseWriter, seq iter.Seq2[models.Message, error]) {
	messages := []models.Message{}

	for msg, err := range seq {
		if err != nil {
			sugar.Error(err)
			http.Error(w, "", http.StatusInternalServerError)
			return
		}
		messages = append(messages, msg)
	}

	err := json.NewEncoder(w).Encode(messages)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
}
