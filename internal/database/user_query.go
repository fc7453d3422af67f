package database

import (
	"strings"

	"gorm.io/gorm"

	"github.com/intervia/server/internal/model"
)

type UserQuery struct {
	Query[model.User]
	login   string
	email   string
	role    string
	search  string
	enabled bool
}

func NewUserQuery(db *gorm.DB) *UserQuery {
	return &UserQuery{
		Query: Query[model.User]{
			db:     db,
			limit:  100,
			offset: 0,
			order:  "users.created_at DESC, users.login DESC",
		},
	}
}

func (q *UserQuery) Limit(n int) *UserQuery {
	if q == nil {
		return nil
	}

	q.limit = n
	return q
}

func (q *UserQuery) Offset(n int) *UserQuery {
	if q == nil {
		return nil
	}

	q.offset = n
	return q
}

func (q *UserQuery) Login(login string) *UserQuery {
	if q == nil {
		return nil
	}

	q.login = login
	return q
}

func (q *UserQuery) Email(email string) *UserQuery {
	if q == nil {
		return nil
	}

	q.email = email
	return q
}

func (q *UserQuery) Role(role string) *UserQuery {
	if q == nil {
		return nil
	}

	q.role = role
	return q
}

func (q *UserQuery) Enabled() *UserQuery {
	if q == nil {
		return nil
	}

	q.enabled = true
	return q
}

func (q *UserQuery) Search(s string) *UserQuery {
	if q == nil {
		return nil
	}

	q.search = s
	return q
}

func (q *UserQuery) where() *gorm.DB {
	tx := q.db

	if q.login != "" {
		tx = tx.Where("users.login = ?", q.login)
	}

	if q.email != "" {
		tx = tx.Where("users.email = ?", q.email)
	}

	if q.role != "" {
		tx = tx.Where("users.role = ?", q.role)
	}

	if q.enabled {
		tx = tx.Where("users.disabled = ?", false)
	}

	if q.search != "" {
		p := "%" + strings.ToLower(q.search) + "%"
		tx = tx.Where(
			"lower(users.login) LIKE ? OR lower(users.name) LIKE ? OR lower(users.email) LIKE ?",
			p, p, p)
	}

	return tx
}

func (q *UserQuery) Get() []*model.User {
	return q.get(q.where().Model(&model.User{}))
}

func (q *UserQuery) One() *model.User {
	return q.one(q.where().Model(&model.User{}))
}

func (q *UserQuery) Count() int64 {
	return q.count(q.where().Model(&model.User{}))
}

func (q *UserQuery) Update(updates map[string]any) error {
	return q.updateOrError(q.where().Model(&model.User{}), updates)
}
