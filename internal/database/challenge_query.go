package database

import (
	"strings"

	"gorm.io/gorm"

	"github.com/intervia/server/internal/model"
)

type ChallengeQuery struct {
	Query[model.Challenge]
	id         uint
	uid        string
	author     string
	status     string
	thematique string
	visibleTo  string
	search     string
}

func NewChallengeQuery(db *gorm.DB) *ChallengeQuery {
	return &ChallengeQuery{
		Query: Query[model.Challenge]{
			db:     db,
			limit:  100,
			offset: 0,
			order:  "challenges.created_at DESC, challenges.id DESC",
		},
	}
}

func (q *ChallengeQuery) Order(s string) *ChallengeQuery {
	if q == nil {
		return nil
	}

	q.order = s
	return q
}

func (q *ChallengeQuery) Limit(n int) *ChallengeQuery {
	if q == nil {
		return nil
	}

	q.limit = n
	return q
}

func (q *ChallengeQuery) Offset(n int) *ChallengeQuery {
	if q == nil {
		return nil
	}

	q.offset = n
	return q
}

func (q *ChallengeQuery) Id(id uint) *ChallengeQuery {
	if q == nil {
		return nil
	}

	q.id = id
	return q
}

func (q *ChallengeQuery) UID(uid string) *ChallengeQuery {
	if q == nil {
		return nil
	}

	q.uid = uid
	return q
}

func (q *ChallengeQuery) Author(login string) *ChallengeQuery {
	if q == nil {
		return nil
	}

	q.author = login
	return q
}

func (q *ChallengeQuery) Status(status string) *ChallengeQuery {
	if q == nil {
		return nil
	}

	q.status = status
	return q
}

func (q *ChallengeQuery) Thematique(t string) *ChallengeQuery {
	if q == nil {
		return nil
	}

	q.thematique = t
	return q
}

// VisibleToOperator restricts to an operator's own challenges in any
// state plus other authors' APPROVED ones.
func (q *ChallengeQuery) VisibleToOperator(login string) *ChallengeQuery {
	if q == nil {
		return nil
	}

	q.visibleTo = login
	return q
}

func (q *ChallengeQuery) Search(s string) *ChallengeQuery {
	if q == nil {
		return nil
	}

	q.search = s
	return q
}

func (q *ChallengeQuery) where() *gorm.DB {
	tx := q.db

	if q.id != 0 {
		tx = tx.Where("challenges.id = ?", q.id)
	}

	if q.uid != "" {
		tx = tx.Where("challenges.uid = ?", q.uid)
	}

	if q.author != "" {
		tx = tx.Where("challenges.operator_login = ?", q.author)
	}

	if q.status != "" {
		tx = tx.Where("challenges.status = ?", q.status)
	}

	if q.thematique != "" {
		tx = tx.Where("challenges.thematique = ?", q.thematique)
	}

	if q.visibleTo != "" {
		tx = tx.Where("challenges.operator_login = ? OR challenges.status = ?",
			q.visibleTo, model.ChallengeApproved)
	}

	if q.search != "" {
		p := "%" + strings.ToLower(q.search) + "%"
		tx = tx.Where(
			"lower(challenges.title) LIKE ? OR lower(challenges.description) LIKE ?",
			p, p)
	}

	return tx
}

func (q *ChallengeQuery) Get() []*model.Challenge {
	return q.get(q.where().Model(&model.Challenge{}))
}

func (q *ChallengeQuery) One() *model.Challenge {
	return q.one(q.where().Model(&model.Challenge{}))
}

func (q *ChallengeQuery) Count() int64 {
	return q.count(q.where().Model(&model.Challenge{}))
}

func (q *ChallengeQuery) Update(updates map[string]any) error {
	return q.updateOrError(q.where().Model(&model.Challenge{}), updates)
}

// Delete is guarded the same way Update is: zero deleted rows means a
// filter no longer held at write time.
func (q *ChallengeQuery) Delete() error {
	tx := q.where().Delete(&model.Challenge{})

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return ErrNoRowsUpdated
	}

	return nil
}
