package missions

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/intervia/server/internal/database"
	"github.com/intervia/server/internal/model"
)

func getTestManager(t *testing.T) (*Manager, *database.DatabaseManager) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	dbm := database.New(db)
	require.NoError(t, dbm.Migrate())

	return New(dbm, nil), dbm
}

func school(login string) *model.User {
	return &model.User{Login: login, Email: login + "@x", Role: model.RoleSchool, Name: "School " + login}
}

func operator(login string, approved bool) *model.User {
	return &model.User{Login: login, Email: login + "@x", Role: model.RoleOperator, Approved: approved}
}

func admin() *model.User {
	return &model.User{Login: "adm", Email: "adm@x", Role: model.RoleAdmin}
}

func TestManager_Create(t *testing.T) {
	mn, _ := getTestManager(t)

	m, err := mn.Create(school("s1"), &model.MissionPostDTO{Title: "Atelier robotique", Description: "demo"})
	require.NoError(t, err)
	require.Equal(t, model.MissionDraft, m.Status)
	require.False(t, m.IsAssigned())
	require.NotEmpty(t, m.UID)

	// missing fields
	_, err = mn.Create(school("s1"), &model.MissionPostDTO{})
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)

	// wrong role
	_, err = mn.Create(operator("o1", true), &model.MissionPostDTO{Title: "ttt", Description: "d"})
	require.ErrorIs(t, err, model.ErrForbidden)
}

func TestManager_Activate(t *testing.T) {
	mn, _ := getTestManager(t)

	m, err := mn.Create(school("s1"), &model.MissionPostDTO{Title: "Atelier", Description: "d"})
	require.NoError(t, err)

	// another school may not activate
	_, err = mn.Activate(m.UID, school("s2"))
	require.ErrorIs(t, err, model.ErrForbidden)

	m, err = mn.Activate(m.UID, school("s1"))
	require.NoError(t, err)
	require.Equal(t, model.MissionActive, m.Status)

	// not a legal transition twice
	_, err = mn.Activate(m.UID, school("s1"))
	require.ErrorIs(t, err, model.ErrInvalidTransition)

	_, err = mn.Activate("no-such-uid", admin())
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestManager_Apply(t *testing.T) {
	mn, _ := getTestManager(t)

	m, err := mn.Create(school("s1"), &model.MissionPostDTO{Title: "Atelier", Description: "d"})
	require.NoError(t, err)

	// draft mission cannot be applied to
	_, err = mn.Apply(m.UID, operator("o1", true))
	require.ErrorIs(t, err, model.ErrInvalidTransition)

	_, err = mn.Activate(m.UID, school("s1"))
	require.NoError(t, err)

	// unapproved operator is rejected before touching the store
	_, err = mn.Apply(m.UID, operator("o2", false))
	require.ErrorIs(t, err, model.ErrForbidden)

	m, err = mn.Apply(m.UID, operator("o1", true))
	require.NoError(t, err)
	require.True(t, m.IsAssignedTo("o1"))

	// a retry after success is a conflict, not a second assignment
	_, err = mn.Apply(m.UID, operator("o3", true))
	require.ErrorIs(t, err, model.ErrConflict)

	_, err = mn.Apply("no-such-uid", operator("o1", true))
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestManager_ApplyConcurrent(t *testing.T) {
	mn, dbm := getTestManager(t)

	m, err := mn.Create(school("s1"), &model.MissionPostDTO{Title: "Atelier", Description: "d"})
	require.NoError(t, err)
	_, err = mn.Activate(m.UID, school("s1"))
	require.NoError(t, err)

	const n = 16

	var wg sync.WaitGroup
	var mx sync.Mutex

	winners := make([]string, 0, 1)
	conflicts := 0

	for i := 0; i < n; i++ {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			login := fmt.Sprintf("op%d", i)
			_, err := mn.Apply(m.UID, operator(login, true))

			mx.Lock()
			defer mx.Unlock()

			switch {
			case err == nil:
				winners = append(winners, login)
			case err == model.ErrConflict:
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}

	wg.Wait()

	require.Len(t, winners, 1)
	require.Equal(t, n-1, conflicts)

	got := dbm.MissionQuery().UID(m.UID).One()
	require.NotNil(t, got.AssignedOperator)
	require.Equal(t, winners[0], *got.AssignedOperator)
	require.Equal(t, model.MissionActive, got.Status)
}

func TestManager_Complete(t *testing.T) {
	mn, dbm := getTestManager(t)

	m, err := mn.Create(school("s1"), &model.MissionPostDTO{Title: "Atelier", Description: "d"})
	require.NoError(t, err)

	// a draft cannot skip ahead to completed
	_, err = mn.Complete(m.UID, school("s1"))
	require.ErrorIs(t, err, model.ErrInvalidTransition)

	_, err = mn.Activate(m.UID, school("s1"))
	require.NoError(t, err)
	_, err = mn.Apply(m.UID, operator("o1", true))
	require.NoError(t, err)

	// an unrelated operator may not complete
	_, err = mn.Complete(m.UID, operator("o2", true))
	require.ErrorIs(t, err, model.ErrForbidden)

	m, err = mn.Complete(m.UID, operator("o1", true))
	require.NoError(t, err)
	require.Equal(t, model.MissionCompleted, m.Status)

	// completing twice leaves the state untouched
	_, err = mn.Complete(m.UID, school("s1"))
	require.ErrorIs(t, err, model.ErrInvalidTransition)
	require.Equal(t, model.MissionCompleted, dbm.MissionQuery().UID(m.UID).One().Status)
}

func TestManager_Scenario(t *testing.T) {
	mn, _ := getTestManager(t)

	s := school("s1")

	m, err := mn.Create(s, &model.MissionPostDTO{Title: "Fresque du climat", Description: "une journee"})
	require.NoError(t, err)

	_, err = mn.Activate(m.UID, s)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]error, 2)

	for i, login := range []string{"opA", "opB"} {
		wg.Add(1)

		go func(i int, login string) {
			defer wg.Done()
			_, results[i] = mn.Apply(m.UID, operator(login, true))
		}(i, login)
	}

	wg.Wait()

	if results[0] == nil {
		require.ErrorIs(t, results[1], model.ErrConflict)
	} else {
		require.ErrorIs(t, results[0], model.ErrConflict)
		require.NoError(t, results[1])
	}

	m, err = mn.Complete(m.UID, s)
	require.NoError(t, err)
	require.Equal(t, model.MissionCompleted, m.Status)
	require.True(t, m.IsAssigned())

	changes := mn.GetChanges(m.UID, time.Time{})
	require.Len(t, changes, 4)
}
