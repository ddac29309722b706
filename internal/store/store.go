// Package store is keyed storage for servers, users and messages. It runs
// plain SQL against whichever backend internal/database opened and knows
// nothing about cross-entity rules; those live in internal/chatlog.
package store

import (
	"database/sql"
	"errors"
	"iter"

	"guardlog-backend/internal/models"
)

// DefaultContent is stored when a message is logged with no content.
const DefaultContent = "Default message"

// Querier is satisfied by both *sql.DB and *sql.Tx, so every operation here
// can run standalone or inside a cascade transaction.
type Querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

func InsertServer(q Querier, server models.Server) error {
	_, err := q.Exec("INSERT INTO servers (id, discord_id, name) VALUES (?, ?, ?)", server.ID, server.DiscordID, server.Name)
	return err
}

func InsertUser(q Querier, user models.User) error {
	_, err := q.Exec("INSERT INTO users (id, discord_id, username) VALUES (?, ?, ?)", user.ID, user.DiscordID, user.Username)
	return err
}

// InsertMessage applies the content default for absent content. Foreign keys
// are not checked here.
func InsertMessage(q Querier, msg models.Message) error {
	if msg.Content == "" {
		msg.Content = DefaultContent
	}

	_, err := q.Exec("INSERT INTO messages (id, user_id, server_id, content) VALUES (?, ?, ?, ?)", msg.ID, msg.UserID, msg.ServerID, msg.Content)
	return err
}

func FindServerByDiscordID(q Querier, discordID int64) (models.Server, error) {
	var server models.Server

	err := q.QueryRow("SELECT id, discord_id, name FROM servers WHERE discord_id = ?", discordID).Scan(&server.ID, &server.DiscordID, &server.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return server, ErrNotFound
	}

	return server, err
}

func FindUserByDiscordID(q Querier, discordID int64) (models.User, error) {
	var user models.User

	err := q.QueryRow("SELECT id, discord_id, username FROM users WHERE discord_id = ?", discordID).Scan(&user.ID, &user.DiscordID, &user.Username)
	if errors.Is(err, sql.ErrNoRows) {
		return user, ErrNotFound
	}

	return user, err
}

func FindMessageByID(q Querier, id int64) (models.Message, error) {
	var msg models.Message

	err := q.QueryRow("SELECT id, user_id, server_id, content FROM messages WHERE id = ?", id).Scan(&msg.ID, &msg.UserID, &msg.ServerID, &msg.Content)
	if errors.Is(err, sql.ErrNoRows) {
		return msg, ErrNotFound
	}

	return msg, err
}

// FindMessageByRefs looks up the oldest message carrying both references.
// Snowflake ids are time ordered, so ORDER BY id gives insertion order.
func FindMessageByRefs(q Querier, userID int64, serverID int64) (models.Message, error) {
	var msg models.Message

	err := q.QueryRow("SELECT id, user_id, server_id, content FROM messages WHERE user_id = ? AND server_id = ? ORDER BY id LIMIT 1", userID, serverID).Scan(&msg.ID, &msg.UserID, &msg.ServerID, &msg.Content)
	if errors.Is(err, sql.ErrNoRows) {
		return msg, ErrNotFound
	}

	return msg, err
}

// ResetMessageContent sets a message's content back to the default
// placeholder.
func ResetMessageContent(q Querier, id int64) (bool, error) {
	result, err := q.Exec("UPDATE messages SET content = ? WHERE id = ?", DefaultContent, id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	return affected > 0, err
}

func ServerExists(q Querier, discordID int64) (bool, error) {
	var exists bool
	err := q.QueryRow("SELECT EXISTS(SELECT 1 FROM servers WHERE discord_id = ?)", discordID).Scan(&exists)
	return exists, err
}

func UserExists(q Querier, discordID int64) (bool, error) {
	var exists bool
	err := q.QueryRow("SELECT EXISTS(SELECT 1 FROM users WHERE discord_id = ?)", discordID).Scan(&exists)
	return exists, err
}

func DeleteServerByDiscordID(q Querier, discordID int64) (bool, error) {
	result, err := q.Exec("DELETE FROM servers WHERE discord_id = ?", discordID)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	return affected > 0, err
}

func DeleteUserByDiscordID(q Querier, discordID int64) (bool, error) {
	result, err := q.Exec("DELETE FROM users WHERE discord_id = ?", discordID)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	return affected > 0, err
}

func DeleteMessageByID(q Querier, id int64) (bool, error) {
	result, err := q.Exec("DELETE FROM messages WHERE id = ?", id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	return affected > 0, err
}

// MessageIDsByUser collects the ids of every message whose user_id equals the
// given discord_id, so a cascade knows its full dependent set up front.
func MessageIDsByUser(q Querier, discordID int64) ([]int64, error) {
	return messageIDs(q, "SELECT id FROM messages WHERE user_id = ?", discordID)
}

func MessageIDsByServer(q Querier, discordID int64) ([]int64, error) {
	return messageIDs(q, "SELECT id FROM messages WHERE server_id = ?", discordID)
}

func messageIDs(q Querier, query string, discordID int64) ([]int64, error) {
	rows, err := q.Query(query, discordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int64{}

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// ListMessagesByUser returns a lazy sequence over the user's messages. Each
// range restarts the query, so the sequence is reusable; rows stream as they
// are consumed.
func ListMessagesByUser(q Querier, discordID int64) iter.Seq2[models.Message, error] {
	return listMessages(q, "SELECT id, user_id, server_id, content FROM messages WHERE user_id = ?", discordID)
}

func ListMessagesByServer(q Querier, discordID int64) iter.Seq2[models.Message, error] {
	return listMessages(q, "SELECT id, user_id, server_id, content FROM messages WHERE server_id = ?", discordID)
}

func listMessages(q Querier, query string, discordID int64) iter.Seq2[models.Message, error] {
	return func(yield func(models.Message, error) bool) {
		rows, err := q.Query(query, discordID)
		if err != nil {
			yield(models.Message{}, err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			var msg models.Message

			if err := rows.Scan(&msg.ID, &msg.UserID, &msg.ServerID, &msg.Content); err != nil {
				yield(models.Message{}, err)
				return
			}

			if !yield(msg, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(models.Message{}, err)
		}
	}
}
