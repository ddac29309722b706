// Package chatlog is the integrity engine around the store: it owns the
// referential rules between servers, users and messages keyed by discord_id,
// and the cascade that keeps them from ever dangling.
package chatlog

import (
	"database/sql"
	"fmt"
	"iter"
	"sync"

	"guardlog-backend/internal/models"
	"guardlog-backend/internal/snowflake"
	"guardlog-backend/internal/store"

	"go.uber.org/zap"
)

const (
	maxNameLength     = 100
	maxUsernameLength = 100
	maxContentLength  = 2000
)

// Service is safe for concurrent use. Mutations serialize on one write mutex
// so an existence check and the write it guards can never interleave with a
// cascade; reads go straight to the database and see either the state before
// a cascade committed or after, never in between.
type Service struct {
	db     *sql.DB
	flakes *snowflake.Generator
	sugar  *zap.SugaredLogger
	mutex  sync.Mutex
}

func New(db *sql.DB, flakes *snowflake.Generator, sugar *zap.SugaredLogger) *Service {
	return &Service{
		db:     db,
		flakes: flakes,
		sugar:  sugar,
	}
}

// RegisterServer rejects an already registered discord_id instead of
// updating it. Re-registration is almost always a duplicate-ingestion bug;
// callers that really want a fresh row remove the old one first.
func (s *Service) RegisterServer(discordID int64, name string) (models.Server, error) {
	var server models.Server

	if discordID <= 0 {
		return server, fmt.Errorf("%w: discord ID must be positive", store.ErrInvalidArgument)
	}
	if name == "" || len(name) > maxNameLength {
		return server, fmt.Errorf("%w: server name must be 1-%d characters", store.ErrInvalidArgument, maxNameLength)
	}

	id, err := s.flakes.Generate()
	if err != nil {
		return server, err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	exists, err := store.ServerExists(s.db, discordID)
	if err != nil {
		return server, err
	}
	if exists {
		return server, store.ErrDuplicateKey
	}

	server = models.Server{ID: id, DiscordID: discordID, Name: name}

	err = store.InsertServer(s.db, server)
	if err != nil {
		return models.Server{}, err
	}

	s.sugar.Debugf("Registered server with discord ID [%d]", discordID)

	return server, nil
}

func (s *Service) RegisterUser(discordID int64, username string) (models.User, error) {
	var user models.User

	if discordID <= 0 {
		return user, fmt.Errorf("%w: discord ID must be positive", store.ErrInvalidArgument)
	}
	if len(username) > maxUsernameLength {
		return user, fmt.Errorf("%w: username can't exceed %d characters", store.ErrInvalidArgument, maxUsernameLength)
	}

	id, err := s.flakes.Generate()
	if err != nil {
		return user, err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	exists, err := store.UserExists(s.db, discordID)
	if err != nil {
		return user, err
	}
	if exists {
		return user, store.ErrDuplicateKey
	}

	user = models.User{ID: id, DiscordID: discordID, Username: username}

	err = store.InsertUser(s.db, user)
	if err != nil {
		return models.User{}, err
	}

	s.sugar.Debugf("Registered user with discord ID [%d]", discordID)

	return user, nil
}

// LogMessage stores a message after resolving each provided reference
// against the live rows. Both references are optional; a missing one means
// "no associated user/server", not a violation. Empty content becomes the
// default placeholder.
func (s *Service) LogMessage(userID *int64, serverID *int64, content string) (models.Message, error) {
	var msg models.Message

	if len(content) > maxContentLength {
		return msg, fmt.Errorf("%w: content can't exceed %d characters", store.ErrInvalidArgument, maxContentLength)
	}

	id, err := s.flakes.Generate()
	if err != nil {
		return msg, err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if userID != nil {
		exists, err := store.UserExists(s.db, *userID)
		if err != nil {
			return msg, err
		}
		if !exists {
			return msg, &store.ForeignKeyError{Relation: "user"}
		}
	}

	if serverID != nil {
		exists, err := store.ServerExists(s.db, *serverID)
		if err != nil {
			return msg, err
		}
		if !exists {
			return msg, &store.ForeignKeyError{Relation: "server"}
		}
	}

	msg = models.Message{ID: id, UserID: userID, ServerID: serverID, Content: content}
	if msg.Content == "" {
		msg.Content = store.DefaultContent
	}

	err = store.InsertMessage(s.db, msg)
	if err != nil {
		return models.Message{}, err
	}

	return msg, nil
}

// RemoveServer cascades in two phases inside one transaction: collect the
// full dependent message set, delete it, then delete the server row. Other
// callers see the whole cascade or none of it. A missing server reports
// (false, nil).
func (s *Service) RemoveServer(discordID int64) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	messageIDs, err := store.MessageIDsByServer(tx, discordID)
	if err != nil {
		return false, err
	}

	for _, messageID := range messageIDs {
		_, err := store.DeleteMessageByID(tx, messageID)
		if err != nil {
			return false, err
		}
	}

	removed, err := store.DeleteServerByDiscordID(tx, discordID)
	if err != nil {
		return false, err
	}

	err = tx.Commit()
	if err != nil {
		return false, err
	}

	if removed {
		s.sugar.Debugf("Removed server [%d] along with %d dependent messages", discordID, len(messageIDs))
	}

	return removed, nil
}

// RemoveUser is the symmetric cascade over messages keyed by user_id.
func (s *Service) RemoveUser(discordID int64) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	messageIDs, err := store.MessageIDsByUser(tx, discordID)
	if err != nil {
		return false, err
	}

	for _, messageID := range messageIDs {
		_, err := store.DeleteMessageByID(tx, messageID)
		if err != nil {
			return false, err
		}
	}

	removed, err := store.DeleteUserByDiscordID(tx, discordID)
	if err != nil {
		return false, err
	}

	err = tx.Commit()
	if err != nil {
		return false, err
	}

	if removed {
		s.sugar.Debugf("Removed user [%d] along with %d dependent messages", discordID, len(messageIDs))
	}

	return removed, nil
}

func (s *Service) RemoveMessage(id int64) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return store.DeleteMessageByID(s.db, id)
}

// ResetMessage puts the default placeholder back into a logged message.
func (s *Service) ResetMessage(id int64) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return store.ResetMessageContent(s.db, id)
}

func (s *Service) FindServerByDiscordID(discordID int64) (models.Server, error) {
	return store.FindServerByDiscordID(s.db, discordID)
}

func (s *Service) FindUserByDiscordID(discordID int64) (models.User, error) {
	return store.FindUserByDiscordID(s.db, discordID)
}

func (s *Service) FindMessageByID(id int64) (models.Message, error) {
	return store.FindMessageByID(s.db, id)
}

// FindMessageByRefs returns the oldest message carrying both references,
// which is how the ingestion API addresses messages.
func (s *Service) FindMessageByRefs(userID int64, serverID int64) (models.Message, error) {
	return store.FindMessageByRefs(s.db, userID, serverID)
}

func (s *Service) ListMessagesByUser(discordID int64) iter.Seq2[models.Message, error] {
	return store.ListMessagesByUser(s.db, discordID)
}

func (s *Service) ListMessagesByServer(discordID int64) iter.Seq2[models.Message, error] {
	return store.ListMessagesByServer(s.db, discordID)
}
