package repository

import (
	"github.com/intervia/server/internal/model"
)

type UserRepository interface {
	Start() error
	Stop()
	CheckAuth(login, password string) bool
	Get(login string) *model.User
	Invalidate(login string)
}
