package repository

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/intervia/server/internal/cache"
	"github.com/intervia/server/internal/database"
	"github.com/intervia/server/internal/model"
)

var _ UserRepository = &UserDbRepository{}

// UserDbRepository resolves caller identities from the database, seeded
// from a yaml file on first start. The seed file is watched and
// re-applied when it changes.
type UserDbRepository struct {
	logger   *slog.Logger
	userFile string
	cache    *cache.Cache[*model.User]
	dbm      *database.DatabaseManager

	watcher *fsnotify.Watcher
}

func NewUserDbRepository(userFile string, dbm *database.DatabaseManager) *UserDbRepository {
	u := &UserDbRepository{
		userFile: userFile,
		logger:   slog.With(slog.String("logger", "user_repo")),
		dbm:      dbm,
	}

	u.cache = cache.NewWithTTL[*model.User](time.Second*10, u.loadUser)

	return u
}

func (u *UserDbRepository) loadUser(login string) *model.User {
	return u.dbm.UserQuery().Login(login).One()
}

func (u *UserDbRepository) Start() error {
	if u.dbm.UserQuery().Count() == 0 {
		if err := u.loadUsersFile(); err != nil {
			return err
		}
	}

	if u.dbm.UserQuery().Count() == 0 {
		u.logger.Info("no users found - creating default admin")

		adm := &model.User{Login: "admin", Email: "admin@localhost", Role: model.RoleAdmin}

		if err := adm.SetPassword("admin"); err != nil {
			return err
		}

		if err := u.dbm.Save(adm); err != nil {
			return err
		}
	}

	return u.watch()
}

func (u *UserDbRepository) watch() error {
	if _, err := os.Lstat(u.userFile); os.IsNotExist(err) {
		return nil
	}

	var err error
	u.watcher, err = fsnotify.NewWatcher()

	if err != nil {
		return err
	}

	if err := u.watcher.Add(u.userFile); err != nil {
		return err
	}

	go func() {
		for {
			select {
			case event, ok := <-u.watcher.Events:
				if !ok {
					return
				}

				u.logger.Debug(fmt.Sprintf("event: %v", event))

				if event.Has(fsnotify.Write) && event.Name == u.userFile {
					u.logger.Info("users file is modified, reloading")

					if err := u.loadUsersFile(); err != nil {
						u.logger.Error("reload error", slog.Any("error", err))
					}

					u.cache.Reset()
				}
			case err, ok := <-u.watcher.Errors:
				if !ok {
					return
				}

				u.logger.Error("watch error", slog.Any("error", err))
			}
		}
	}()

	return nil
}

func (u *UserDbRepository) Stop() {
	if u.watcher != nil {
		_ = u.watcher.Close()
	}
}

func (u *UserDbRepository) CheckAuth(login, password string) bool {
	user := u.cache.Load(login)

	if user == nil || user.Disabled {
		return false
	}

	return user.CheckPassword(password)
}

func (u *UserDbRepository) Get(login string) *model.User {
	return u.cache.Load(login)
}

// Invalidate drops one login from the identity cache so the next auth
// check sees the current database state.
func (u *UserDbRepository) Invalidate(login string) {
	u.cache.Invalidate(login)
}

func (u *UserDbRepository) loadUsersFile() error {
	if _, err := os.Lstat(u.userFile); os.IsNotExist(err) {
		return nil
	}

	dat, err := os.ReadFile(u.userFile)
	if err != nil {
		return err
	}

	users := make([]*model.User, 0)

	if err1 := yaml.Unmarshal(dat, &users); err1 != nil {
		return err1
	}

	for _, user := range users {
		if user.Login == "" {
			continue
		}

		// seed passwords may be given in clear, hash them once
		if len(user.Password) > 0 && user.Password[0] != '$' {
			if err1 := user.SetPassword(user.Password); err1 != nil {
				return err1
			}
		}

		if err1 := u.dbm.ForceSave(user); err1 != nil {
			return err1
		}
	}

	return nil
}
