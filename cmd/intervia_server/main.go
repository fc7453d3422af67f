package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/intervia/server/internal/access"
	"github.com/intervia/server/internal/callbacks"
	"github.com/intervia/server/internal/challenges"
	"github.com/intervia/server/internal/database"
	"github.com/intervia/server/internal/missions"
	"github.com/intervia/server/internal/model"
	"github.com/intervia/server/internal/repository"
)

var gitRevision = "unknown"

type App struct {
	logger *slog.Logger
	config *AppConfig

	dbm        *database.DatabaseManager
	users      repository.UserRepository
	missions   *missions.Manager
	challenges *challenges.Manager
	access     *access.Engine

	changeCb *callbacks.Callback[*model.Change]
}

func NewApp(config *AppConfig) *App {
	app := &App{
		logger:   slog.Default(),
		config:   config,
		changeCb: callbacks.New[*model.Change](),
	}

	db, err := database.GetDatabase(config.DB(), config.Debug())
	if err != nil {
		panic(err)
	}

	app.dbm = database.New(db)

	if err := app.dbm.Migrate(); err != nil {
		panic(err)
	}

	app.users = repository.NewUserDbRepository(config.UsersFile(), app.dbm)
	app.missions = missions.New(app.dbm, app.changeCb)
	app.challenges = challenges.New(app.dbm, app.changeCb)
	app.access = access.New(app.dbm)

	return app
}

func (app *App) Run() {
	if err := app.users.Start(); err != nil {
		app.logger.Error("error starting user repository", slog.Any("error", err))
		os.Exit(1)
	}

	defer app.users.Stop()

	api := NewHTTPApi(app, app.config.ApiAddr())

	go func() {
		if err := api.Listen(); err != nil {
			app.logger.Error("api error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	app.logger.Info("listening on " + app.config.ApiAddr())

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	app.logger.Info("exiting...")
	_ = api.Shutdown()
}

func main() {
	conf := flag.String("config", "intervia.yml", "config file")
	debug := flag.Bool("debug", false, "debug logging")
	flag.Parse()

	cfg := NewAppConfig()
	cfg.Load(*conf)
	cfg.LoadEnv("INTERVIA")

	if *debug {
		cfg.Set("debug", true)
	}

	var h slog.Handler
	if cfg.Debug() {
		h = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug, AddSource: true})
	} else {
		h = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}

	slog.SetDefault(slog.New(h))
	slog.Default().Info("version " + gitRevision)

	NewApp(cfg).Run()
}
