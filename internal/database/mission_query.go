package database

import (
	"strings"

	"gorm.io/gorm"

	"github.com/intervia/server/internal/model"
)

type MissionQuery struct {
	Query[model.Mission]
	id         uint
	uid        string
	school     string
	status     string
	assignee   string
	visibleTo  string
	search     string
	unassigned bool
}

func NewMissionQuery(db *gorm.DB) *MissionQuery {
	return &MissionQuery{
		Query: Query[model.Mission]{
			db:     db,
			limit:  100,
			offset: 0,
			order:  "missions.created_at DESC, missions.id DESC",
		},
	}
}

func (q *MissionQuery) Order(s string) *MissionQuery {
	if q == nil {
		return nil
	}

	q.order = s
	return q
}

func (q *MissionQuery) Limit(n int) *MissionQuery {
	if q == nil {
		return nil
	}

	q.limit = n
	return q
}

func (q *MissionQuery) Offset(n int) *MissionQuery {
	if q == nil {
		return nil
	}

	q.offset = n
	return q
}

func (q *MissionQuery) Id(id uint) *MissionQuery {
	if q == nil {
		return nil
	}

	q.id = id
	return q
}

func (q *MissionQuery) UID(uid string) *MissionQuery {
	if q == nil {
		return nil
	}

	q.uid = uid
	return q
}

func (q *MissionQuery) School(login string) *MissionQuery {
	if q == nil {
		return nil
	}

	q.school = login
	return q
}

func (q *MissionQuery) Status(status string) *MissionQuery {
	if q == nil {
		return nil
	}

	q.status = status
	return q
}

func (q *MissionQuery) Assignee(login string) *MissionQuery {
	if q == nil {
		return nil
	}

	q.assignee = login
	return q
}

// VisibleToOperator restricts to missions an operator may see: every
// ACTIVE mission plus missions assigned to them in any state.
func (q *MissionQuery) VisibleToOperator(login string) *MissionQuery {
	if q == nil {
		return nil
	}

	q.visibleTo = login
	return q
}

func (q *MissionQuery) Unassigned() *MissionQuery {
	if q == nil {
		return nil
	}

	q.unassigned = true
	return q
}

// Search matches case-insensitively against title, description and the
// owning school's display name.
func (q *MissionQuery) Search(s string) *MissionQuery {
	if q == nil {
		return nil
	}

	q.search = s
	return q
}

func (q *MissionQuery) where() *gorm.DB {
	tx := q.db

	if q.id != 0 {
		tx = tx.Where("missions.id = ?", q.id)
	}

	if q.uid != "" {
		tx = tx.Where("missions.uid = ?", q.uid)
	}

	if q.school != "" {
		tx = tx.Where("missions.school_login = ?", q.school)
	}

	if q.status != "" {
		tx = tx.Where("missions.status = ?", q.status)
	}

	if q.assignee != "" {
		tx = tx.Where("missions.assigned_operator = ?", q.assignee)
	}

	if q.visibleTo != "" {
		tx = tx.Where("missions.status = ? OR missions.assigned_operator = ?",
			model.MissionActive, q.visibleTo)
	}

	if q.unassigned {
		tx = tx.Where("missions.assigned_operator IS NULL")
	}

	if q.search != "" {
		p := "%" + strings.ToLower(q.search) + "%"
		tx = tx.Where(
			"lower(missions.title) LIKE ? OR lower(missions.description) LIKE ? OR lower(missions.school_name) LIKE ?",
			p, p, p)
	}

	return tx
}

func (q *MissionQuery) Get() []*model.Mission {
	return q.get(q.where().Model(&model.Mission{}))
}

func (q *MissionQuery) One() *model.Mission {
	return q.one(q.where().Model(&model.Mission{}))
}

func (q *MissionQuery) Count() int64 {
	return q.count(q.where().Model(&model.Mission{}))
}

// Update is a guarded write: every filter set on the builder becomes a
// precondition checked atomically by the store.
func (q *MissionQuery) Update(updates map[string]any) error {
	return q.updateOrError(q.where().Model(&model.Mission{}), updates)
}
