package missions

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/intervia/server/internal/callbacks"
	"github.com/intervia/server/internal/database"
	"github.com/intervia/server/internal/model"
)

var (
	missionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "intervia",
		Name:      "missions_created_total",
		Help:      "The total number of missions created",
	})

	missionsAssigned = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "intervia",
		Name:      "missions_assigned_total",
		Help:      "The total number of successful operator assignments",
	})

	assignConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "intervia",
		Name:      "assignment_conflicts_total",
		Help:      "The total number of apply calls lost to a concurrent assignment",
	})
)

// Manager owns the mission status machine. Every status or assignment
// write goes through a guarded store update; the manager never trusts a
// value it read a moment earlier.
type Manager struct {
	dbm      *database.DatabaseManager
	logger   *slog.Logger
	changeCb *callbacks.Callback[*model.Change]
}

func New(dbm *database.DatabaseManager, changeCb *callbacks.Callback[*model.Change]) *Manager {
	return &Manager{
		dbm:      dbm,
		logger:   slog.With("logger", "missions"),
		changeCb: changeCb,
	}
}

func (mn *Manager) Get(uid string) (*model.Mission, error) {
	m := mn.dbm.MissionQuery().UID(uid).One()

	if m == nil {
		return nil, model.ErrNotFound
	}

	return m, nil
}

func (mn *Manager) Create(school *model.User, dto *model.MissionPostDTO) (*model.Mission, error) {
	if !school.IsSchool() {
		return nil, model.ErrForbidden
	}

	if err := model.Validate(dto); err != nil {
		return nil, err
	}

	m := &model.Mission{
		UID:         uuid.NewString(),
		Title:       dto.Title,
		Description: dto.Description,
		Status:      model.MissionDraft,
		SchoolLogin: school.Login,
		SchoolName:  school.Name,
	}

	if err := mn.dbm.Create(m); err != nil {
		return nil, err
	}

	missionsCreated.Inc()
	mn.recordChange(model.ChangeCreateMission, m.UID, school.Login, "")

	return m, nil
}

// Activate moves DRAFT -> ACTIVE. Allowed for the owning school or an
// admin.
func (mn *Manager) Activate(uid string, caller *model.User) (*model.Mission, error) {
	m, err := mn.Get(uid)
	if err != nil {
		return nil, err
	}

	if !caller.IsAdmin() && !(caller.IsSchool() && m.IsOwnedBy(caller.Login)) {
		return nil, model.ErrForbidden
	}

	if !model.NextMissionStatus(m.Status, model.MissionActive) {
		return nil, model.ErrInvalidTransition
	}

	err = mn.dbm.MissionQuery().
		UID(uid).
		Status(model.MissionDraft).
		Update(map[string]any{"status": model.MissionActive, "updated_at": time.Now()})

	if err != nil {
		if errors.Is(err, database.ErrNoRowsUpdated) {
			return nil, model.ErrInvalidTransition
		}

		return nil, err
	}

	mn.recordChange(model.ChangeActivateMission, uid, caller.Login, "")

	return mn.Get(uid)
}

// Apply assigns an operator to an active, unassigned mission. The store
// update carries both preconditions, so under concurrent applies the
// database decides who was first; everyone else gets ErrConflict or
// ErrInvalidTransition depending on what they lost to.
func (mn *Manager) Apply(uid string, operator *model.User) (*model.Mission, error) {
	if !operator.IsOperator() {
		return nil, model.ErrForbidden
	}

	if !operator.Approved {
		return nil, model.ErrForbidden
	}

	err := mn.dbm.MissionQuery().
		UID(uid).
		Status(model.MissionActive).
		Unassigned().
		Update(map[string]any{"assigned_operator": operator.Login, "updated_at": time.Now()})

	if err == nil {
		missionsAssigned.Inc()
		mn.recordChange(model.ChangeAssignOperator, uid, operator.Login, "")
		mn.logger.Info(fmt.Sprintf("mission %s assigned to %s", uid, operator.Login))

		return mn.Get(uid)
	}

	if !errors.Is(err, database.ErrNoRowsUpdated) {
		return nil, err
	}

	// the guard failed: find out why
	m := mn.dbm.MissionQuery().UID(uid).One()

	switch {
	case m == nil:
		return nil, model.ErrNotFound
	case m.Status != model.MissionActive:
		return nil, model.ErrInvalidTransition
	default:
		assignConflicts.Inc()
		return nil, model.ErrConflict
	}
}

// Complete moves ACTIVE -> COMPLETED. Allowed for the owning school,
// the assigned operator or an admin.
func (mn *Manager) Complete(uid string, caller *model.User) (*model.Mission, error) {
	m, err := mn.Get(uid)
	if err != nil {
		return nil, err
	}

	allowed := caller.IsAdmin() ||
		(caller.IsSchool() && m.IsOwnedBy(caller.Login)) ||
		(caller.IsOperator() && m.IsAssignedTo(caller.Login))

	if !allowed {
		return nil, model.ErrForbidden
	}

	if !model.NextMissionStatus(m.Status, model.MissionCompleted) {
		return nil, model.ErrInvalidTransition
	}

	err = mn.dbm.MissionQuery().
		UID(uid).
		Status(model.MissionActive).
		Update(map[string]any{"status": model.MissionCompleted, "updated_at": time.Now()})

	if err != nil {
		if errors.Is(err, database.ErrNoRowsUpdated) {
			return nil, model.ErrInvalidTransition
		}

		return nil, err
	}

	mn.recordChange(model.ChangeCompleteMission, uid, caller.Login, "")

	return mn.Get(uid)
}

func (mn *Manager) GetChanges(uid string, after time.Time) []*model.Change {
	return mn.dbm.ChangeQuery().Mission(uid).After(after).Get()
}

func (mn *Manager) recordChange(typ, missionUID, actor, detail string) {
	c := &model.Change{
		Type:       typ,
		MissionUID: missionUID,
		ActorLogin: actor,
		Detail:     detail,
	}

	if err := mn.dbm.Create(c); err != nil {
		return
	}

	if mn.changeCb != nil {
		mn.changeCb.AddMessage(c)
	}
}
