package main

import (
	"github.com/gofiber/fiber/v2"
)

// Public handlers run without the auth middleware: a nil user means an
// anonymous viewer and the access engine restricts accordingly.

func getPublicMissionsHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		page, err := app.access.ListMissions(nil, missionFilter(ctx))
		if err != nil {
			return sendError(ctx, err)
		}

		return ctx.JSON(page)
	}
}

func getPublicChallengesHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		page, err := app.access.ListChallenges(nil, challengeFilter(ctx))
		if err != nil {
			return sendError(ctx, err)
		}

		return ctx.JSON(page)
	}
}
