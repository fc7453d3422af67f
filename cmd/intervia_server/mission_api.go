package main

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/intervia/server/internal/access"
	"github.com/intervia/server/internal/model"
)

func addMissionApi(app *App, f fiber.Router) {
	g := f.Group("/missions")

	g.Get("/", getMissionsHandler(app))
	g.Post("/", getMissionPostHandler(app))
	g.Get("/:uid", getMissionHandler(app))
	g.Post("/:uid/activate", getMissionActivateHandler(app))
	g.Post("/:uid/apply", getMissionApplyHandler(app))
	g.Post("/:uid/complete", getMissionCompleteHandler(app))
	g.Get("/:uid/changes", getMissionChangesHandler(app))
}

func missionFilter(ctx *fiber.Ctx) access.MissionFilter {
	return access.MissionFilter{
		Query:  ctx.Query("q"),
		Status: ctx.Query("status"),
		View:   ctx.Query("view"),
		Paging: access.Paging{
			Skip: ctx.QueryInt("skip", 0),
			Take: ctx.QueryInt("take", 0),
		},
	}
}

func getMissionsHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		user := CurrentUser(app, ctx)

		page, err := app.access.ListMissions(user, missionFilter(ctx))
		if err != nil {
			return sendError(ctx, err)
		}

		return ctx.JSON(page)
	}
}

func getMissionPostHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		user := CurrentUser(app, ctx)

		dto := new(model.MissionPostDTO)
		if err := ctx.BodyParser(dto); err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad request body"})
		}

		m, err := app.missions.Create(user, dto)
		if err != nil {
			return sendError(ctx, err)
		}

		return ctx.Status(fiber.StatusCreated).JSON(m.DTO())
	}
}

func getMissionHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		user := CurrentUser(app, ctx)

		dto, err := app.access.GetMission(user, ctx.Params("uid"))
		if err != nil {
			return sendError(ctx, err)
		}

		return ctx.JSON(dto)
	}
}

func getMissionActivateHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		user := CurrentUser(app, ctx)

		m, err := app.missions.Activate(ctx.Params("uid"), user)
		if err != nil {
			return sendError(ctx, err)
		}

		return ctx.JSON(m.DTO())
	}
}

func getMissionApplyHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		user := CurrentUser(app, ctx)

		m, err := app.missions.Apply(ctx.Params("uid"), user)
		if err != nil {
			return sendError(ctx, err)
		}

		return ctx.JSON(m.DTO())
	}
}

func getMissionCompleteHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		user := CurrentUser(app, ctx)

		m, err := app.missions.Complete(ctx.Params("uid"), user)
		if err != nil {
			return sendError(ctx, err)
		}

		return ctx.JSON(m.DTO())
	}
}

func getMissionChangesHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		user := CurrentUser(app, ctx)

		if !user.IsAdmin() {
			return sendError(ctx, model.ErrForbidden)
		}

		changes := app.missions.GetChanges(ctx.Params("uid"), time.Time{})
		result := make([]*model.ChangeDTO, len(changes))

		for i, c := range changes {
			result[i] = c.DTO()
		}

		return ctx.JSON(result)
	}
}
