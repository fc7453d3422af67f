package main

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/intervia/server/internal/model"
)

func addAvailabilityApi(app *App, f fiber.Router) {
	g := f.Group("/availability")

	g.Get("/", getAvailabilityHandler(app))
	g.Put("/", getAvailabilityPutHandler(app))
}

func getAvailabilityHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		user := CurrentUser(app, ctx)

		if !user.IsOperator() {
			return sendError(ctx, model.ErrForbidden)
		}

		a := app.dbm.AvailabilityQuery().Operator(user.Login).One()

		if a == nil {
			// lazily created: an operator with no record is available
			a = &model.Availability{OperatorLogin: user.Login, IsAvailable: true}
		}

		return ctx.JSON(a.StatusAt(time.Now()))
	}
}

func getAvailabilityPutHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		user := CurrentUser(app, ctx)

		if !user.IsOperator() {
			return sendError(ctx, model.ErrForbidden)
		}

		dto := new(model.AvailabilityPutDTO)
		if err := ctx.BodyParser(dto); err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad request body"})
		}

		now := time.Now()

		if !dto.IsAvailable && dto.UnavailableUntil != nil && dto.UnavailableUntil.Before(now) {
			return sendError(ctx, model.NewValidationError(
				errors.New("blackout end date is in the past"),
				model.FieldError{Field: "unavailable_until", Error: "must not be in the past"}))
		}

		a := &model.Availability{
			OperatorLogin: user.Login,
			IsAvailable:   dto.IsAvailable,
			Notes:         dto.Notes,
		}

		if !dto.IsAvailable {
			a.UnavailableUntil = dto.UnavailableUntil
		}

		// full replace, no merge with the previous record
		if err := app.dbm.ForceSave(a); err != nil {
			return sendError(ctx, err)
		}

		return ctx.JSON(a.StatusAt(now))
	}
}
