package database

import (
	"database/sql"
	"fmt"

	"guardlog-backend/internal/models"
)

func setPragmaValues(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return err
	}

	// these next 2 extremely speed up performance of sqlite
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return err
	}

	if _, err := db.Exec("PRAGMA synchronous = normal"); err != nil {
		return err
	}

	return nil
}

func Setup(cfg *models.ConfigFile) (*sql.DB, error) {
	var db *sql.DB
	var err error

	if cfg.SelfContained {
		db, err = sql.Open("sqlite", "./database.db")
		if err != nil {
			return db, err
		}

		// there can be sqlite busy errors if this is not set to 1
		db.SetMaxOpenConns(1)

		err = setPragmaValues(db)
		if err != nil {
			return db, err
		}
	} else {
		db, err = sql.Open("mysql", fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&timeout=10s", cfg.DbUser, cfg.DbPassword, cfg.DbAddress, cfg.DbPort, cfg.DbDatabase))
		if err != nil {
			return db, err
		}

		db.SetMaxOpenConns(10)
	}

	err = SetupTables(db)
	if err != nil {
		return db, err
	}

	return db, nil
}

// SetupTables creates the three guard tables. Safe to call repeatedly.
//
// The messages foreign keys reference the externally issued discord_id
// columns, not the internal primary keys. Cascade removal is done explicitly
// by the chatlog service inside one transaction, so the declarations here
// only act as a last line of defense.
func SetupTables(db *sql.DB) error {
	var err error

	_, err = db.Exec(`
			CREATE TABLE IF NOT EXISTS servers (
				id BIGINT PRIMARY KEY,
				discord_id BIGINT NOT NULL UNIQUE,
				name VARCHAR(100) NOT NULL
			);
		`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
			CREATE TABLE IF NOT EXISTS users (
				id BIGINT PRIMARY KEY,
				discord_id BIGINT NOT NULL UNIQUE,
				username VARCHAR(100) NOT NULL
			);
		`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
			CREATE TABLE IF NOT EXISTS messages (
				id BIGINT PRIMARY KEY,
				user_id BIGINT,
				server_id BIGINT,
				content TEXT NOT NULL DEFAULT 'Default message',
				FOREIGN KEY (user_id) REFERENCES users(discord_id),
				FOREIGN KEY (server_id) REFERENCES servers(discord_id)
			);
		`)
	if err != nil {
		return err
	}

	return nil
}
