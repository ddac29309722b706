package chatlog_test

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"guardlog-backend/internal/chatlog"
	"guardlog-backend/internal/database"
	"guardlog-backend/internal/models"
	"guardlog-backend/internal/snowflake"
	"guardlog-backend/internal/store"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

func setupTestService(t *testing.T) *chatlog.Service {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	db.SetMaxOpenConns(1)

	err = database.SetupTables(db)
	if err != nil {
		t.Fatalf("Failed to create tables: %v", err)
	}

	flakes, err := snowflake.NewGenerator(0)
	if err != nil {
		t.Fatal(err)
	}

	return chatlog.New(db, flakes, zap.NewNop().Sugar())
}

func ptr(v int64) *int64 {
	return &v
}

func collectMessages(t *testing.T, service *chatlog.Service, serverID int64) []models.Message {
	t.Helper()

	messages := []models.Message{}
	for msg, err := range service.ListMessagesByServer(serverID) {
		if err != nil {
			t.Fatal(err)
		}
		messages = append(messages, msg)
	}
	return messages
}

func TestRegisterServerDuplicateLeavesStoreUnchanged(t *testing.T) {
	service := setupTestService(t)

	_, err := service.RegisterServer(100, "Guild")
	if err != nil {
		t.Fatal(err)
	}

	_, err = service.RegisterServer(100, "Impostor")
	if !errors.Is(err, store.ErrDuplicateKey) {
		t.Fatalf("Got error %v, want ErrDuplicateKey", err)
	}

	server, err := service.FindServerByDiscordID(100)
	if err != nil {
		t.Fatal(err)
	}
	if server.Name != "Guild" {
		t.Errorf("Got name %q after rejected re-registration, want Guild", server.Name)
	}
}

func TestRegisterUserDuplicate(t *testing.T) {
	service := setupTestService(t)

	_, err := service.RegisterUser(7, "alice")
	if err != nil {
		t.Fatal(err)
	}

	_, err = service.RegisterUser(7, "alice2")
	if !errors.Is(err, store.ErrDuplicateKey) {
		t.Errorf("Got error %v, want ErrDuplicateKey", err)
	}
}

func TestRegisterInvalidArguments(t *testing.T) {
	service := setupTestService(t)

	longName := strings.Repeat("a", 101)

	tests := []struct {
		name string
		call func() error
	}{
		{
			name: "server discord ID must be positive",
			call: func() error { _, err := service.RegisterServer(0, "Guild"); return err },
		},
		{
			name: "server name can't be empty",
			call: func() error { _, err := service.RegisterServer(100, ""); return err },
		},
		{
			name: "server name can't exceed 100 characters",
			call: func() error { _, err := service.RegisterServer(100, longName); return err },
		},
		{
			name: "user discord ID must be positive",
			call: func() error { _, err := service.RegisterUser(-1, "alice"); return err },
		},
		{
			name: "username can't exceed 100 characters",
			call: func() error { _, err := service.RegisterUser(7, longName); return err },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.call()
			if !errors.Is(err, store.ErrInvalidArgument) {
				t.Errorf("Got error %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestLogMessageUnknownUser(t *testing.T) {
	service := setupTestService(t)

	_, err := service.RegisterServer(100, "Guild")
	if err != nil {
		t.Fatal(err)
	}

	_, err = service.LogMessage(ptr(7), ptr(100), "hi")

	var fkErr *store.ForeignKeyError
	if !errors.As(err, &fkErr) {
		t.Fatalf("Got error %v, want ForeignKeyError", err)
	}
	if fkErr.Relation != "user" {
		t.Errorf("Got relation %q, want user", fkErr.Relation)
	}

	if got := collectMessages(t, service, 100); len(got) != 0 {
		t.Errorf("Got %d messages after rejected insert, want 0", len(got))
	}
}

func TestLogMessageUnknownServer(t *testing.T) {
	service := setupTestService(t)

	_, err := service.RegisterUser(7, "alice")
	if err != nil {
		t.Fatal(err)
	}

	_, err = service.LogMessage(ptr(7), ptr(100), "hi")

	var fkErr *store.ForeignKeyError
	if !errors.As(err, &fkErr) {
		t.Fatalf("Got error %v, want ForeignKeyError", err)
	}
	if fkErr.Relation != "server" {
		t.Errorf("Got relation %q, want server", fkErr.Relation)
	}
}

func TestLogMessageWithoutReferences(t *testing.T) {
	service := setupTestService(t)

	msg, err := service.LogMessage(nil, nil, "")
	if err != nil {
		t.Fatal(err)
	}

	if msg.Content != store.DefaultContent {
		t.Errorf("Got content %q, want the default %q", msg.Content, store.DefaultContent)
	}

	stored, err := service.FindMessageByID(msg.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.UserID != nil || stored.ServerID != nil {
		t.Errorf("Got refs %v/%v, want nil/nil", stored.UserID, stored.ServerID)
	}
}

func TestRemoveUserCascade(t *testing.T) {
	service := setupTestService(t)

	_, err := service.RegisterServer(100, "Guild")
	if err != nil {
		t.Fatal(err)
	}
	_, err = service.RegisterUser(7, "alice")
	if err != nil {
		t.Fatal(err)
	}
	_, err = service.RegisterUser(8, "bob")
	if err != nil {
		t.Fatal(err)
	}

	for range 3 {
		_, err = service.LogMessage(ptr(7), ptr(100), "from alice")
		if err != nil {
			t.Fatal(err)
		}
	}
	_, err = service.LogMessage(ptr(8), ptr(100), "from bob")
	if err != nil {
		t.Fatal(err)
	}

	removed, err := service.RemoveUser(7)
	if err != nil {
		t.Fatal(err)
	}
	if !removed {
		t.Fatal("Expected removed to be true")
	}

	_, err = service.FindUserByDiscordID(7)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Got error %v after removal, want ErrNotFound", err)
	}

	for range service.ListMessagesByUser(7) {
		t.Fatal("Expected no messages left for the removed user")
	}

	// bob and his message survive, the server survives
	remaining := collectMessages(t, service, 100)
	if len(remaining) != 1 || remaining[0].Content != "from bob" {
		t.Errorf("Got remaining messages %+v, want only bob's", remaining)
	}

	_, err = service.FindServerByDiscordID(100)
	if err != nil {
		t.Errorf("Server should be untouched, got %v", err)
	}
}

func TestRemoveServerCascade(t *testing.T) {
	service := setupTestService(t)

	_, err := service.RegisterServer(100, "Guild")
	if err != nil {
		t.Fatal(err)
	}
	_, err = service.RegisterServer(200, "Other")
	if err != nil {
		t.Fatal(err)
	}
	_, err = service.RegisterUser(7, "alice")
	if err != nil {
		t.Fatal(err)
	}

	_, err = service.LogMessage(ptr(7), ptr(100), "here")
	if err != nil {
		t.Fatal(err)
	}
	_, err = service.LogMessage(ptr(7), ptr(200), "elsewhere")
	if err != nil {
		t.Fatal(err)
	}

	removed, err := service.RemoveServer(100)
	if err != nil {
		t.Fatal(err)
	}
	if !removed {
		t.Fatal("Expected removed to be true")
	}

	if got := collectMessages(t, service, 100); len(got) != 0 {
		t.Errorf("Got %d messages for removed server, want 0", len(got))
	}

	if got := collectMessages(t, service, 200); len(got) != 1 {
		t.Errorf("Got %d messages for surviving server, want 1", len(got))
	}

	// alice keeps her row even though one of her messages cascaded away
	_, err = service.FindUserByDiscordID(7)
	if err != nil {
		t.Errorf("User should be untouched, got %v", err)
	}
}

func TestRemoveMissingTargets(t *testing.T) {
	service := setupTestService(t)

	removed, err := service.RemoveServer(404)
	if err != nil || removed {
		t.Errorf("Got (%t, %v), want (false, nil)", removed, err)
	}

	removed, err = service.RemoveUser(404)
	if err != nil || removed {
		t.Errorf("Got (%t, %v), want (false, nil)", removed, err)
	}

	removed, err = service.RemoveMessage(404)
	if err != nil || removed {
		t.Errorf("Got (%t, %v), want (false, nil)", removed, err)
	}
}

func TestGuildScenario(t *testing.T) {
	service := setupTestService(t)

	_, err := service.RegisterServer(100, "Guild")
	if err != nil {
		t.Fatal(err)
	}

	_, err = service.RegisterUser(7, "alice")
	if err != nil {
		t.Fatal(err)
	}

	_, err = service.LogMessage(ptr(7), ptr(100), "hi")
	if err != nil {
		t.Fatal(err)
	}

	messages := collectMessages(t, service, 100)
	if len(messages) != 1 || messages[0].Content != "hi" {
		t.Fatalf("Got messages %+v, want one with content hi", messages)
	}

	removed, err := service.RemoveUser(7)
	if err != nil || !removed {
		t.Fatalf("Got (%t, %v), want (true, nil)", removed, err)
	}

	if got := collectMessages(t, service, 100); len(got) != 0 {
		t.Errorf("Got %d messages after user removal, want 0", len(got))
	}

	_, err = service.FindUserByDiscordID(7)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Got error %v, want ErrNotFound", err)
	}
}

func TestResetMessage(t *testing.T) {
	service := setupTestService(t)

	_, err := service.RegisterServer(100, "Guild")
	if err != nil {
		t.Fatal(err)
	}
	_, err = service.RegisterUser(7, "alice")
	if err != nil {
		t.Fatal(err)
	}

	msg, err := service.LogMessage(ptr(7), ptr(100), "something rude")
	if err != nil {
		t.Fatal(err)
	}

	reset, err := service.ResetMessage(msg.ID)
	if err != nil || !reset {
		t.Fatalf("Got (%t, %v), want (true, nil)", reset, err)
	}

	stored, err := service.FindMessageByRefs(7, 100)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Content != store.DefaultContent {
		t.Errorf("Got content %q, want %q", stored.Content, store.DefaultContent)
	}
}

func TestConcurrentRegisterLogRemove(t *testing.T) {
	service := setupTestService(t)

	_, err := service.RegisterServer(100, "Guild")
	if err != nil {
		t.Fatal(err)
	}

	const workers = 16

	var wg sync.WaitGroup
	errCh := make(chan error, workers)

	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			discordID := int64(1000 + i)

			_, err := service.RegisterUser(discordID, fmt.Sprintf("worker-%d", i))
			if err != nil {
				errCh <- err
				return
			}

			for range 3 {
				_, err := service.LogMessage(ptr(discordID), ptr(100), "work")
				if err != nil {
					errCh <- err
					return
				}
			}

			removed, err := service.RemoveUser(discordID)
			if err != nil {
				errCh <- err
				return
			}
			if !removed {
				errCh <- fmt.Errorf("worker %d: user not removed", i)
			}
		}()
	}

	wg.Wait()
	close(errCh)

	for err := range errCh {
		t.Error(err)
	}

	// every cascade ran to completion, nothing may be left behind
	if got := collectMessages(t, service, 100); len(got) != 0 {
		t.Errorf("Got %d leftover messages, want 0", len(got))
	}
}
