package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"guardlog-backend/internal/hub"
)

// The HTTP surface calls servers "guilds" because that is what the ingestion
// side (the bot) calls them; internally they are servers.

func CreateGuild(w http.ResponseWriter, r *http.Request) {
	type GuildRequest struct {
		ServerID int64  `json:"server_id" validate:"required"`
		Name     string `json:"name" validate:"max=100"`
	}

	var guildRequest GuildRequest
	err := json.NewDecoder(r.Body).Decode(&guildRequest)
	if err != nil {
		sugar.Debug(err)
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	err = validate.Struct(guildRequest)
	if err != nil {
		sugar.Debug(err)
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	if guildRequest.Name == "" {
		guildRequest.Name = "My server"
	}

	server, err := service.RegisterServer(guildRequest.ServerID, guildRequest.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	err = hub.Emit(hub.ServerRegistered, server)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	err = json.NewEncoder(w).Encode(server)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
}

func DeleteGuild(w http.ResponseWriter, r *http.Request) {
	serverID, err := strconv.ParseInt(r.URL.Query().Get("serverID"), 10, 64)
	if err != nil || serverID == 0 {
		http.Error(w, "Invalid server ID", http.StatusBadRequest)
		return
	}

	removed, err := service.RemoveServer(serverID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if !removed {
		http.Error(w, "", http.StatusNotFound)
		return
	}

	err = hub.Emit(hub.ServerRemoved, serverID)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
}

func GetGuild(w http.ResponseWriter, r *http.Request) {
	serverID, err := strconv.ParseInt(r.URL.Query().Get("serverID"), 10, 64)
	if err != nil || serverID == 0 {
		http.Error(w, "Invalid server ID", http.StatusBadRequest)
		return
	}

	server, err := service.FindServerByDiscordID(serverID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	err = json.NewEncoder(w).Encode(server)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
}
