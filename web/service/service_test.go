package service

import (
	"context"
	"testing"

	"github.com/dailydiet/daily-diet/config"
	"github.com/dailydiet/daily-diet/database"
	"github.com/dailydiet/daily-diet/database/model"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := config.GetDefaultDatabaseConfig()
	cfg.SQLite.Path = ":memory:"
	db, err := database.InitDB(cfg, false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.CloseDB(db) })
	return db
}

func mustRegister(t *testing.T, users *UserService, name string) *model.User {
	t.Helper()
	u, err := users.Register(context.Background(), name, "secret")
	require.NoError(t, err)
	return u
}

func mustAdmin(t *testing.T, users *UserService, name string) *model.User {
	t.Helper()
	u, _, err := users.EnsureAdmin(context.Background(), name, "secret")
	require.NoError(t, err)
	return u
}
