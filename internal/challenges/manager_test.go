package challenges

import (
	"testing"

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

func operator(login string) *model.User {
	return &model.User{Login: login, Email: login + "@x", Role: model.RoleOperator, Approved: true}
}

func admin() *model.User {
	return &model.User{Login: "adm", Email: "adm@x", Role: model.RoleAdmin}
}

func postDTO(title string) *model.ChallengePostDTO {
	return &model.ChallengePostDTO{
		Title:       title,
		Description: "a full description",
		Thematique:  "environnement",
	}
}

func strp(s string) *string { return &s }

func TestManager_Submit(t *testing.T) {
	mn, _ := getTestManager(t)

	c, err := mn.Submit(operator("o1"), postDTO("Fresque du climat"))
	require.NoError(t, err)
	require.Equal(t, model.ChallengePending, c.Status)
	require.Equal(t, "o1", c.OperatorLogin)

	_, err = mn.Submit(admin(), postDTO("nope"))
	require.ErrorIs(t, err, model.ErrForbidden)

	_, err = mn.Submit(operator("o1"), &model.ChallengePostDTO{Title: "x"})
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestManager_Moderate(t *testing.T) {
	mn, _ := getTestManager(t)

	c, err := mn.Submit(operator("o1"), postDTO("Fresque du climat"))
	require.NoError(t, err)

	_, err = mn.Moderate(c.UID, operator("o1"), &model.ModerationDTO{Decision: model.ChallengeApproved})
	require.ErrorIs(t, err, model.ErrForbidden)

	// a rejection without a reason is a validation error
	_, err = mn.Moderate(c.UID, admin(), &model.ModerationDTO{Decision: model.ChallengeRejected})
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)

	c, err = mn.Moderate(c.UID, admin(), &model.ModerationDTO{Decision: model.ChallengeRejected, Reason: "too vague"})
	require.NoError(t, err)
	require.Equal(t, model.ChallengeRejected, c.Status)
	require.Equal(t, "too vague", c.RejectionReason)

	// only PENDING may be moderated
	_, err = mn.Moderate(c.UID, admin(), &model.ModerationDTO{Decision: model.ChallengeApproved})
	require.ErrorIs(t, err, model.ErrInvalidTransition)

	_, err = mn.Moderate("no-such-uid", admin(), &model.ModerationDTO{Decision: model.ChallengeApproved})
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestManager_ModerateApprovalClearsReason(t *testing.T) {
	mn, _ := getTestManager(t)

	c, err := mn.Submit(operator("o1"), postDTO("Fresque du climat"))
	require.NoError(t, err)

	c, err = mn.Moderate(c.UID, admin(), &model.ModerationDTO{Decision: model.ChallengeRejected, Reason: "too vague"})
	require.NoError(t, err)

	// edit re-submits, so a second moderation round is possible
	c, err = mn.Edit(c.UID, operator("o1"), &model.ChallengePatchDTO{Description: strp("now with details")})
	require.NoError(t, err)
	require.Equal(t, model.ChallengePending, c.Status)
	require.Empty(t, c.RejectionReason)

	c, err = mn.Moderate(c.UID, admin(), &model.ModerationDTO{Decision: model.ChallengeApproved, Reason: "ignored"})
	require.NoError(t, err)
	require.Equal(t, model.ChallengeApproved, c.Status)
	require.Empty(t, c.RejectionReason)
}

func TestManager_Edit(t *testing.T) {
	mn, dbm := getTestManager(t)

	c, err := mn.Submit(operator("o1"), postDTO("Fresque du climat"))
	require.NoError(t, err)

	// only the author may edit
	_, err = mn.Edit(c.UID, operator("o2"), &model.ChallengePatchDTO{Title: strp("stolen")})
	require.ErrorIs(t, err, model.ErrForbidden)

	c, err = mn.Edit(c.UID, operator("o1"), &model.ChallengePatchDTO{Title: strp("Fresque du climat v2")})
	require.NoError(t, err)
	require.Equal(t, "Fresque du climat v2", c.Title)
	require.Equal(t, "a full description", c.Description)

	// below the minimum length
	_, err = mn.Edit(c.UID, operator("o1"), &model.ChallengePatchDTO{Title: strp("x")})
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = mn.Moderate(c.UID, admin(), &model.ModerationDTO{Decision: model.ChallengeApproved})
	require.NoError(t, err)

	// approved challenges are frozen
	_, err = mn.Edit(c.UID, operator("o1"), &model.ChallengePatchDTO{Title: strp("after approval")})
	require.ErrorIs(t, err, model.ErrForbidden)
	require.Equal(t, "Fresque du climat v2", dbm.ChallengeQuery().UID(c.UID).One().Title)
}

func TestManager_Withdraw(t *testing.T) {
	mn, dbm := getTestManager(t)

	c, err := mn.Submit(operator("o1"), postDTO("Fresque du climat"))
	require.NoError(t, err)

	require.ErrorIs(t, mn.Withdraw(c.UID, operator("o2")), model.ErrForbidden)

	require.NoError(t, mn.Withdraw(c.UID, operator("o1")))
	require.Nil(t, dbm.ChallengeQuery().UID(c.UID).One())
	require.ErrorIs(t, mn.Withdraw(c.UID, operator("o1")), model.ErrNotFound)

	c, err = mn.Submit(operator("o1"), postDTO("Quiz biodiversite"))
	require.NoError(t, err)
	_, err = mn.Moderate(c.UID, admin(), &model.ModerationDTO{Decision: model.ChallengeApproved})
	require.NoError(t, err)

	// approval locks the record against withdrawal too
	require.ErrorIs(t, mn.Withdraw(c.UID, operator("o1")), model.ErrForbidden)
}
