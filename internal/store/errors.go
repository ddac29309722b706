package store

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateKey    = errors.New("duplicate key")
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

// ForeignKeyError reports a message referencing a discord_id with no live
// owner row. Relation is "user" or "server".
type ForeignKeyError struct {
	Relation string
}

func (e *ForeignKeyError) Error() string {
	return fmt.Sprintf("foreign key violation: no %s row with that discord_id", e.Relation)
}
