package main

import (
	"github.com/gofiber/fiber/v2"

	"github.com/intervia/server/internal/access"
	"github.com/intervia/server/internal/model"
)

func addChallengeApi(app *App, f fiber.Router) {
	g := f.Group("/challenges")

	g.Get("/", getChallengesHandler(app))
	g.Post("/", getChallengePostHandler(app))
	g.Get("/:uid", getChallengeHandler(app))
	g.Patch("/:uid", getChallengePatchHandler(app))
	g.Delete("/:uid", getChallengeDeleteHandler(app))
	g.Post("/:uid/moderate", getChallengeModerateHandler(app))
}

func challengeFilter(ctx *fiber.Ctx) access.ChallengeFilter {
	return access.ChallengeFilter{
		Query:      ctx.Query("q"),
		Status:     ctx.Query("status"),
		Thematique: ctx.Query("thematique"),
		Mine:       ctx.QueryBool("mine", false),
		Paging: access.Paging{
			Skip: ctx.QueryInt("skip", 0),
			Take: ctx.QueryInt("take", 0),
		},
	}
}

func getChallengesHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		user := CurrentUser(app, ctx)

		page, err := app.access.ListChallenges(user, challengeFilter(ctx))
		if err != nil {
			return sendError(ctx, err)
		}

		return ctx.JSON(page)
	}
}

func getChallengePostHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		user := CurrentUser(app, ctx)

		dto := new(model.ChallengePostDTO)
		if err := ctx.BodyParser(dto); err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad request body"})
		}

		c, err := app.challenges.Submit(user, dto)
		if err != nil {
			return sendError(ctx, err)
		}

		return ctx.Status(fiber.StatusCreated).JSON(c.DTO())
	}
}

func getChallengeHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		user := CurrentUser(app, ctx)

		dto, err := app.access.GetChallenge(user, ctx.Params("uid"))
		if err != nil {
			return sendError(ctx, err)
		}

		return ctx.JSON(dto)
	}
}

func getChallengePatchHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		user := CurrentUser(app, ctx)

		dto := new(model.ChallengePatchDTO)
		if err := ctx.BodyParser(dto); err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad request body"})
		}

		c, err := app.challenges.Edit(ctx.Params("uid"), user, dto)
		if err != nil {
			return sendError(ctx, err)
		}

		return ctx.JSON(c.DTO())
	}
}

func getChallengeDeleteHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		user := CurrentUser(app, ctx)

		if err := app.challenges.Withdraw(ctx.Params("uid"), user); err != nil {
			return sendError(ctx, err)
		}

		return ctx.SendStatus(fiber.StatusNoContent)
	}
}

func getChallengeModerateHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		user := CurrentUser(app, ctx)

		dto := new(model.ModerationDTO)
		if err := ctx.BodyParser(dto); err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad request body"})
		}

		c, err := app.challenges.Moderate(ctx.Params("uid"), user, dto)
		if err != nil {
			return sendError(ctx, err)
		}

		return ctx.JSON(c.DTO())
	}
}
