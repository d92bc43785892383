package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// TournamentStore persists tournaments and everything hanging off their
// stages. It holds no connection: writes take the caller's transaction and
// reads take any querier, so services can read inside the transaction they
// are about to write in or straight from the pool.
type TournamentStore struct{}

func NewTournamentStore() *TournamentStore {
	return &TournamentStore{}
}

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}

// notFound swaps sql.ErrNoRows for the given domain error.
func notFound(err, notFoundError error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFoundError
	}
	return err
}
