package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateCreatesTables(t *testing.T) {
	db, err := Initialize(":memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db))
	// migrations are idempotent
	require.NoError(t, Migrate(db))

	for _, table := range []string{"sessions", "notifications", "notification_preferences", "checkout_attempts"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", table).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}

func TestIdempotencyKeyUniquePerUser(t *testing.T) {
	db, err := Initialize(":memory:")
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, Migrate(db))

	insert := `INSERT INTO checkout_attempts (order_id, user_id, idempotency_key, amount, payment_method, status, created_at, updated_at)
		VALUES (?, ?, ?, '1000', 'card', 'pending', datetime('now'), datetime('now'))`

	_, err = db.Exec(insert, "order_1", "u1", "key-1")
	require.NoError(t, err)
	_, err = db.Exec(insert, "order_2", "u1", "key-1")
	assert.Error(t, err)

	// empty keys are not constrained
	_, err = db.Exec(insert, "order_3", "u1", "")
	require.NoError(t, err)
	_, err = db.Exec(insert, "order_4", "u1", "")
	require.NoError(t, err)
}
