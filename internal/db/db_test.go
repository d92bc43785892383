package db

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrations(t *testing.T) {
	database, err := sqlx.Connect("sqlite3", "file::memory:?_foreign_keys=on")
	require.NoError(t, err)
	defer database.Close()
	database.SetMaxOpenConns(1)

	require.NoError(t, RunMigrations(database.DB))
	// Second run is a no-op
	require.NoError(t, RunMigrations(database.DB))

	var tables []string
	err = database.Select(&tables, "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' AND name != 'schema_migrations' ORDER BY name")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"fixtures",
		"promotion_audits",
		"rankings",
		"stage_groups",
		"stage_promotions",
		"stage_teams",
		"stages",
		"tournaments",
	}, tables)
}

func TestDSN(t *testing.T) {
	dsn := DSN("engine.db")
	assert.Contains(t, dsn, "file:engine.db?")
	assert.Contains(t, dsn, "_txlock=immediate")
	assert.Contains(t, dsn, "_foreign_keys=on")
}
