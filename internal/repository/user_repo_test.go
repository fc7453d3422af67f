package repository

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/intervia/server/internal/database"
	"github.com/intervia/server/internal/model"
)

func getTestRepo(t *testing.T) (*UserDbRepository, *database.DatabaseManager) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	dbm := database.New(db)
	require.NoError(t, dbm.Migrate())

	return NewUserDbRepository("", dbm), dbm
}

func TestCheckAuth(t *testing.T) {
	r, dbm := getTestRepo(t)

	u := &model.User{Login: "u1", Email: "u1@x", Role: model.RoleSchool}
	require.NoError(t, u.SetPassword("secret"))
	require.NoError(t, dbm.Save(u))

	require.True(t, r.CheckAuth("u1", "secret"))
	require.False(t, r.CheckAuth("u1", "wrong"))
	require.False(t, r.CheckAuth("nobody", "secret"))
}

func TestCheckAuthInvalidate(t *testing.T) {
	r, dbm := getTestRepo(t)

	u := &model.User{Login: "u1", Email: "u1@x", Role: model.RoleSchool}
	require.NoError(t, u.SetPassword("secret"))
	require.NoError(t, dbm.Save(u))

	require.True(t, r.CheckAuth("u1", "secret"))

	require.NoError(t, dbm.UserQuery().Login("u1").Update(map[string]any{"disabled": true}))

	// the cached identity still passes until it is dropped
	require.True(t, r.CheckAuth("u1", "secret"))

	r.Invalidate("u1")
	require.False(t, r.CheckAuth("u1", "secret"))
}

func TestStartSeedsDefaultAdmin(t *testing.T) {
	r, dbm := getTestRepo(t)

	require.NoError(t, r.Start())
	defer r.Stop()

	adm := dbm.UserQuery().Login("admin").One()
	require.NotNil(t, adm)
	require.True(t, adm.IsAdmin())
	require.True(t, r.CheckAuth("admin", "admin"))
}
