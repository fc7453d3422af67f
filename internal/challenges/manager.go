package challenges

import (
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/intervia/server/internal/callbacks"
	"github.com/intervia/server/internal/database"
	"github.com/intervia/server/internal/model"
)

var moderated = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "intervia",
	Name:      "challenges_moderated_total",
	Help:      "The total number of moderation decisions",
}, []string{"decision"})

// Manager owns the challenge moderation machine: PENDING -> APPROVED or
// REJECTED. Approval locks the record for its author; a rejected
// challenge may be edited, which re-submits it.
type Manager struct {
	dbm      *database.DatabaseManager
	logger   *slog.Logger
	changeCb *callbacks.Callback[*model.Change]
}

func New(dbm *database.DatabaseManager, changeCb *callbacks.Callback[*model.Change]) *Manager {
	return &Manager{
		dbm:      dbm,
		logger:   slog.With("logger", "challenges"),
		changeCb: changeCb,
	}
}

func (mn *Manager) Get(uid string) (*model.Challenge, error) {
	c := mn.dbm.ChallengeQuery().UID(uid).One()

	if c == nil {
		return nil, model.ErrNotFound
	}

	return c, nil
}

func (mn *Manager) Submit(operator *model.User, dto *model.ChallengePostDTO) (*model.Challenge, error) {
	if !operator.IsOperator() {
		return nil, model.ErrForbidden
	}

	if err := model.Validate(dto); err != nil {
		return nil, err
	}

	c := &model.Challenge{
		UID:              uuid.NewString(),
		Title:            dto.Title,
		Description:      dto.Description,
		ShortDescription: dto.ShortDescription,
		Thematique:       dto.Thematique,
		Duration:         dto.Duration,
		TargetAudience:   dto.TargetAudience,
		OperatorLogin:    operator.Login,
		Status:           model.ChallengePending,
	}

	if err := mn.dbm.Create(c); err != nil {
		return nil, err
	}

	mn.recordChange(model.ChangeSubmitChallenge, c.UID, operator.Login, "")

	return c, nil
}

// Moderate decides a PENDING challenge. A rejection must carry a
// reason; an approval clears any reason left from a previous round.
func (mn *Manager) Moderate(uid string, admin *model.User, dto *model.ModerationDTO) (*model.Challenge, error) {
	if !admin.IsAdmin() {
		return nil, model.ErrForbidden
	}

	if err := model.Validate(dto); err != nil {
		return nil, err
	}

	if dto.Decision == model.ChallengeRejected && dto.Reason == "" {
		return nil, model.NewValidationError(
			errors.New("rejection requires a reason"),
			model.FieldError{Field: "reason", Error: "required for REJECTED"})
	}

	reason := ""
	if dto.Decision == model.ChallengeRejected {
		reason = dto.Reason
	}

	err := mn.dbm.ChallengeQuery().
		UID(uid).
		Status(model.ChallengePending).
		Update(map[string]any{
			"status":           dto.Decision,
			"rejection_reason": reason,
			"updated_at":       time.Now(),
		})

	if err != nil {
		if errors.Is(err, database.ErrNoRowsUpdated) {
			if mn.dbm.ChallengeQuery().UID(uid).One() == nil {
				return nil, model.ErrNotFound
			}

			return nil, model.ErrInvalidTransition
		}

		return nil, err
	}

	moderated.With(prometheus.Labels{"decision": dto.Decision}).Inc()
	mn.recordChange(model.ChangeModerateChallenge, uid, admin.Login, dto.Decision)

	return mn.Get(uid)
}

// Edit patches a non-approved challenge. Editing a rejected challenge
// re-submits it: status returns to PENDING and the reason is cleared.
func (mn *Manager) Edit(uid string, operator *model.User, dto *model.ChallengePatchDTO) (*model.Challenge, error) {
	if err := model.Validate(dto); err != nil {
		return nil, err
	}

	c, err := mn.Get(uid)
	if err != nil {
		return nil, err
	}

	if !c.IsAuthoredBy(operator.GetLogin()) || c.Locked() {
		return nil, model.ErrForbidden
	}

	updates := map[string]any{"updated_at": time.Now()}

	if dto.Title != nil {
		updates["title"] = *dto.Title
	}

	if dto.Description != nil {
		updates["description"] = *dto.Description
	}

	if dto.ShortDescription != nil {
		updates["short_description"] = *dto.ShortDescription
	}

	if dto.Thematique != nil {
		updates["thematique"] = *dto.Thematique
	}

	if dto.Duration != nil {
		updates["duration"] = *dto.Duration
	}

	if dto.TargetAudience != nil {
		updates["target_audience"] = *dto.TargetAudience
	}

	resubmit := c.Status == model.ChallengeRejected
	if resubmit {
		updates["status"] = model.ChallengePending
		updates["rejection_reason"] = ""
	}

	// guard on the status we just read so a concurrent approval is not
	// silently overwritten
	err = mn.dbm.ChallengeQuery().
		UID(uid).
		Status(c.Status).
		Update(updates)

	if err != nil {
		if errors.Is(err, database.ErrNoRowsUpdated) {
			return nil, model.ErrConflict
		}

		return nil, err
	}

	if resubmit {
		mn.recordChange(model.ChangeResubmitChallenge, uid, operator.Login, "")
	}

	return mn.Get(uid)
}

// Withdraw deletes a non-approved challenge.
func (mn *Manager) Withdraw(uid string, operator *model.User) error {
	c, err := mn.Get(uid)
	if err != nil {
		return err
	}

	if !c.IsAuthoredBy(operator.GetLogin()) || c.Locked() {
		return model.ErrForbidden
	}

	// guard on the status we just read so a concurrent approval does not
	// lose the record it just locked
	if err := mn.dbm.ChallengeQuery().UID(uid).Status(c.Status).Delete(); err != nil {
		if errors.Is(err, database.ErrNoRowsUpdated) {
			return model.ErrConflict
		}

		return err
	}

	mn.recordChange(model.ChangeWithdrawChallenge, uid, operator.Login, "")

	return nil
}

func (mn *Manager) recordChange(typ, challengeUID, actor, detail string) {
	c := &model.Change{
		Type:         typ,
		ChallengeUID: challengeUID,
		ActorLogin:   actor,
		Detail:       detail,
	}

	if err := mn.dbm.Create(c); err != nil {
		return
	}

	if mn.changeCb != nil {
		mn.changeCb.AddMessage(c)
	}
}
