package main

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/intervia/server/internal/access"
	"github.com/intervia/server/internal/model"
)

func addUserApi(app *App, f fiber.Router) {
	g := f.Group("/users")

	g.Get("/", getUsersHandler(app))
	g.Post("/", getUserPostHandler(app))
	g.Post("/:login/disable", getUserDisableHandler(app))
}

func getUsersHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		user := CurrentUser(app, ctx)

		page, err := app.access.ListUsers(user, access.UserFilter{
			Query: ctx.Query("q"),
			Role:  ctx.Query("role"),
			Paging: access.Paging{
				Skip: ctx.QueryInt("skip", 0),
				Take: ctx.QueryInt("take", 0),
			},
		})
		if err != nil {
			return sendError(ctx, err)
		}

		return ctx.JSON(page)
	}
}

func getUserPostHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		user := CurrentUser(app, ctx)

		if !user.IsAdmin() {
			return sendError(ctx, model.ErrForbidden)
		}

		dto := new(model.UserPostDTO)
		if err := ctx.BodyParser(dto); err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad request body"})
		}

		if err := model.Validate(dto); err != nil {
			return sendError(ctx, err)
		}

		if app.dbm.UserQuery().Login(dto.Login).One() != nil {
			return sendError(ctx, model.NewValidationError(
				errors.New("login already taken"),
				model.FieldError{Field: "login", Error: "already taken"}))
		}

		if app.dbm.UserQuery().Email(dto.Email).One() != nil {
			return sendError(ctx, model.NewValidationError(
				errors.New("email already taken"),
				model.FieldError{Field: "email", Error: "already taken"}))
		}

		u := &model.User{
			Login:    dto.Login,
			Email:    dto.Email,
			Name:     dto.Name,
			Role:     dto.Role,
			Approved: dto.Approved,
		}

		if err := u.SetPassword(dto.Password); err != nil {
			return sendError(ctx, err)
		}

		if err := app.dbm.Create(u); err != nil {
			return sendError(ctx, err)
		}

		// a failed lookup for this login may be cached
		app.users.Invalidate(u.Login)

		return ctx.Status(fiber.StatusCreated).JSON(u.DTO())
	}
}

func getUserDisableHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		user := CurrentUser(app, ctx)

		if !user.IsAdmin() {
			return sendError(ctx, model.ErrForbidden)
		}

		login := ctx.Params("login")

		err := app.dbm.UserQuery().Login(login).Update(map[string]any{"disabled": true})
		if err != nil {
			return sendError(ctx, model.ErrNotFound)
		}

		// drop the cached identity so the ban takes effect immediately
		app.users.Invalidate(login)

		return ctx.SendStatus(fiber.StatusNoContent)
	}
}
