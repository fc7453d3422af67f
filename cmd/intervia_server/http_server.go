package main

import (
	"embed"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/intervia/server/internal/model"
	"github.com/intervia/server/pkg/log"
)

//go:embed templates
var templates embed.FS

type HTTPApi struct {
	f    *fiber.App
	addr string
}

func NewHTTPApi(app *App, addr string) *HTTPApi {
	engine := html.NewFileSystem(http.FS(templates), ".html")
	engine.Delims("[[", "]]")

	api := &HTTPApi{addr: addr}

	api.f = fiber.New(fiber.Config{DisableStartupMessage: true, Views: engine})

	api.f.Use(log.NewFiberLogger(&log.LoggerConfig{
		Name:          "api",
		UserGetter:    Username,
		DoMetrics:     true,
		LogErrorsOnly: true,
	}))

	api.f.Get("/", getIndexHandler())
	api.f.Get("/metrics", getMetricsHandler())

	pub := api.f.Group("/api/public")
	pub.Get("/missions", getPublicMissionsHandler(app))
	pub.Get("/challenges", getPublicChallengesHandler(app))

	priv := api.f.Group("/api", getUserAuth(app.users))
	addMissionApi(app, priv)
	addChallengeApi(app, priv)
	addUserApi(app, priv)
	addAvailabilityApi(app, priv)

	api.f.Get("/ws", getUserAuth(app.users), getWsHandler(app))

	return api
}

func (api *HTTPApi) Address() string {
	return api.addr
}

func (api *HTTPApi) Listen() error {
	return api.f.Listen(api.addr)
}

func (api *HTTPApi) Shutdown() error {
	return api.f.Shutdown()
}

func getIndexHandler() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		data := map[string]any{
			"page": "dash",
		}

		return ctx.Render("templates/index", data)
	}
}

func getMetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(
		prometheus.DefaultGatherer,
		promhttp.HandlerOpts{DisableCompression: true},
	))
}

// sendError maps the core error taxonomy onto HTTP statuses. Conflict
// and InvalidTransition share 409 but keep distinct bodies.
func sendError(ctx *fiber.Ctx, err error) error {
	var verr *model.ValidationError

	switch {
	case errors.As(err, &verr):
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  verr.Error(),
			"fields": verr.Fields,
		})
	case errors.Is(err, model.ErrNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	case errors.Is(err, model.ErrForbidden):
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	case errors.Is(err, model.ErrInvalidTransition):
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "invalid transition"})
	case errors.Is(err, model.ErrConflict):
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "already assigned"})
	default:
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}
