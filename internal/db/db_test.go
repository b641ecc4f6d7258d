package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationNames_Sorted(t *testing.T) {
	names, err := migrationNames()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "001_init.sql", names[0])
	for i := 1; i < len(names); i++ {
		assert.Less(t, names[i-1], names[i])
	}
}

func TestMigrations_DefineTables(t *testing.T) {
	sqlBytes, err := migrationFiles.ReadFile("migrations/001_init.sql")
	require.NoError(t, err)
	sql := string(sqlBytes)
	assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS users")
	assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS skill_profiles")
	assert.Contains(t, sql, "version")
}

func TestRoleString(t *testing.T) {
	assert.Equal(t, "user", RoleUser.String())
	assert.Equal(t, "admin", RoleAdmin.String())
	assert.Equal(t, "unknown", Role(7).String())
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "jane@example.com", normalizeEmail("  Jane@Example.COM "))
	assert.Equal(t, "", normalizeEmail("   "))
}
