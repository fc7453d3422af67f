package database

import (
	"gorm.io/gorm"

	"github.com/intervia/server/internal/model"
)

type AvailabilityQuery struct {
	Query[model.Availability]
	operator string
}

func NewAvailabilityQuery(db *gorm.DB) *AvailabilityQuery {
	return &AvailabilityQuery{
		Query: Query[model.Availability]{
			db:     db,
			limit:  100,
			offset: 0,
			order:  "availabilities.operator_login",
		},
	}
}

func (q *AvailabilityQuery) Operator(login string) *AvailabilityQuery {
	if q == nil {
		return nil
	}

	q.operator = login
	return q
}

func (q *AvailabilityQuery) where() *gorm.DB {
	tx := q.db

	if q.operator != "" {
		tx = tx.Where("availabilities.operator_login = ?", q.operator)
	}

	return tx
}

func (q *AvailabilityQuery) Get() []*model.Availability {
	return q.get(q.where().Model(&model.Availability{}))
}

func (q *AvailabilityQuery) One() *model.Availability {
	return q.one(q.where().Model(&model.Availability{}))
}

func (q *AvailabilityQuery) Count() int64 {
	return q.count(q.where().Model(&model.Availability{}))
}
