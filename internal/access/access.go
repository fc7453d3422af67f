package access

import (
	"errors"

	"github.com/intervia/server/internal/database"
	"github.com/intervia/server/internal/model"
)

const (
	DefaultTake = 20
	MaxTake     = 100
)

// Views a school can request when listing missions.
const (
	ViewMine  = "mine"
	ViewBoard = "board"
)

type Paging struct {
	Skip int
	Take int
}

func (p *Paging) normalize() error {
	if p.Skip < 0 || p.Take < 0 {
		return model.NewValidationError(errors.New("bad paging"),
			model.FieldError{Field: "skip/take", Error: "must be non-negative"})
	}

	if p.Take == 0 {
		p.Take = DefaultTake
	}

	if p.Take > MaxTake {
		p.Take = MaxTake
	}

	return nil
}

type MissionFilter struct {
	Query  string
	Status string
	View   string
	Paging
}

type ChallengeFilter struct {
	Query      string
	Status     string
	Thematique string
	Mine       bool
	Paging
}

type UserFilter struct {
	Query string
	Role  string
	Paging
}

// Page is a slice of the full filtered set. Total counts the set before
// slicing, so ceil(total/take) is always the page count.
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}

func emptyPage[T any]() *Page[T] {
	return &Page[T]{Items: make([]T, 0)}
}

// Engine evaluates the role-keyed visibility policy once per request
// and produces filtered, deterministically ordered pages. Callers never
// supply their own scope: a nil user is an anonymous viewer.
type Engine struct {
	dbm *database.DatabaseManager
}

func New(dbm *database.DatabaseManager) *Engine {
	return &Engine{dbm: dbm}
}

func (e *Engine) ListMissions(caller *model.User, f MissionFilter) (*Page[*model.MissionDTO], error) {
	if err := f.normalize(); err != nil {
		return nil, err
	}

	if f.Status != "" && !contains(model.MissionStatuses, f.Status) {
		return nil, model.NewValidationError(errors.New("unknown status"),
			model.FieldError{Field: "status", Error: "unknown mission status"})
	}

	q := e.dbm.MissionQuery().Search(f.Query)

	switch {
	case caller == nil:
		// anonymous sees the public board only
		if f.Status != "" && f.Status != model.MissionActive {
			return emptyPage[*model.MissionDTO](), nil
		}

		q = q.Status(model.MissionActive)

	case caller.IsAdmin():
		q = q.Status(f.Status)

	case caller.IsSchool():
		if f.View == ViewBoard {
			if f.Status != "" && f.Status != model.MissionActive {
				return emptyPage[*model.MissionDTO](), nil
			}

			q = q.Status(model.MissionActive)
		} else {
			q = q.School(caller.Login).Status(f.Status)
		}

	case caller.IsOperator():
		q = q.VisibleToOperator(caller.Login).Status(f.Status)

	default:
		return nil, model.ErrForbidden
	}

	total := q.Count()
	items := q.Limit(f.Take).Offset(f.Skip).Get()

	page := &Page[*model.MissionDTO]{Items: make([]*model.MissionDTO, len(items)), Total: total}

	for i, m := range items {
		page.Items[i] = m.DTO()
	}

	return page, nil
}

func (e *Engine) GetMission(caller *model.User, uid string) (*model.MissionDTO, error) {
	m := e.dbm.MissionQuery().UID(uid).One()

	if m == nil {
		return nil, model.ErrNotFound
	}

	visible := false

	switch {
	case caller == nil:
		visible = m.Status == model.MissionActive
	case caller.IsAdmin():
		visible = true
	case caller.IsSchool():
		visible = m.IsOwnedBy(caller.Login) || m.Status == model.MissionActive
	case caller.IsOperator():
		visible = m.Status == model.MissionActive || m.IsAssignedTo(caller.Login)
	}

	if !visible {
		return nil, model.ErrNotFound
	}

	return m.DTO(), nil
}

func (e *Engine) ListChallenges(caller *model.User, f ChallengeFilter) (*Page[*model.ChallengeDTO], error) {
	if err := f.normalize(); err != nil {
		return nil, err
	}

	if f.Status != "" && !contains(model.ChallengeStatuses, f.Status) {
		return nil, model.NewValidationError(errors.New("unknown status"),
			model.FieldError{Field: "status", Error: "unknown challenge status"})
	}

	q := e.dbm.ChallengeQuery().Search(f.Query).Thematique(f.Thematique)

	switch {
	case caller.IsAdmin():
		q = q.Status(f.Status)

	case caller.IsOperator():
		if f.Mine {
			q = q.Author(caller.Login).Status(f.Status)
		} else {
			q = q.VisibleToOperator(caller.Login).Status(f.Status)
		}

	default:
		// schools and anonymous callers see the approved catalog only
		if f.Status != "" && f.Status != model.ChallengeApproved {
			return emptyPage[*model.ChallengeDTO](), nil
		}

		q = q.Status(model.ChallengeApproved)
	}

	total := q.Count()
	items := q.Limit(f.Take).Offset(f.Skip).Get()

	page := &Page[*model.ChallengeDTO]{Items: make([]*model.ChallengeDTO, len(items)), Total: total}

	for i, c := range items {
		page.Items[i] = c.DTO()
	}

	return page, nil
}

func (e *Engine) GetChallenge(caller *model.User, uid string) (*model.ChallengeDTO, error) {
	c := e.dbm.ChallengeQuery().UID(uid).One()

	if c == nil {
		return nil, model.ErrNotFound
	}

	visible := false

	switch {
	case caller.IsAdmin():
		visible = true
	case caller.IsOperator():
		visible = c.IsAuthoredBy(caller.Login) || c.Status == model.ChallengeApproved
	default:
		visible = c.Status == model.ChallengeApproved
	}

	if !visible {
		return nil, model.ErrNotFound
	}

	return c.DTO(), nil
}

func (e *Engine) ListUsers(caller *model.User, f UserFilter) (*Page[*model.UserDTO], error) {
	if !caller.IsAdmin() {
		return nil, model.ErrForbidden
	}

	if err := f.normalize(); err != nil {
		return nil, err
	}

	if f.Role != "" && !contains(model.AllRoles, f.Role) {
		return nil, model.NewValidationError(errors.New("unknown role"),
			model.FieldError{Field: "role", Error: "unknown role"})
	}

	q := e.dbm.UserQuery().Search(f.Query).Role(f.Role)

	total := q.Count()
	items := q.Limit(f.Take).Offset(f.Skip).Get()

	page := &Page[*model.UserDTO]{Items: make([]*model.UserDTO, len(items)), Total: total}

	for i, u := range items {
		page.Items[i] = u.DTO()
	}

	return page, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}

	return false
}
