package database

import (
	"time"

	"gorm.io/gorm"

	"github.com/intervia/server/internal/model"
)

type ChangeQuery struct {
	Query[model.Change]
	missionUID   string
	challengeUID string
	after        time.Time
}

func NewChangeQuery(db *gorm.DB) *ChangeQuery {
	return &ChangeQuery{
		Query: Query[model.Change]{
			db:     db,
			limit:  100,
			offset: 0,
			order:  "changes.created_at DESC, changes.id DESC",
		},
	}
}

func (q *ChangeQuery) Limit(n int) *ChangeQuery {
	if q == nil {
		return nil
	}

	q.limit = n
	return q
}

func (q *ChangeQuery) Mission(uid string) *ChangeQuery {
	if q == nil {
		return nil
	}

	q.missionUID = uid
	return q
}

func (q *ChangeQuery) Challenge(uid string) *ChangeQuery {
	if q == nil {
		return nil
	}

	q.challengeUID = uid
	return q
}

func (q *ChangeQuery) After(t time.Time) *ChangeQuery {
	if q == nil {
		return nil
	}

	q.after = t
	return q
}

func (q *ChangeQuery) where() *gorm.DB {
	tx := q.db

	if q.missionUID != "" {
		tx = tx.Where("changes.mission_uid = ?", q.missionUID)
	}

	if q.challengeUID != "" {
		tx = tx.Where("changes.challenge_uid = ?", q.challengeUID)
	}

	if !q.after.IsZero() {
		tx = tx.Where("changes.created_at > ?", q.after)
	}

	return tx
}

func (q *ChangeQuery) Get() []*model.Change {
	return q.get(q.where().Model(&model.Change{}))
}

func (q *ChangeQuery) Count() int64 {
	return q.count(q.where().Model(&model.Change{}))
}
