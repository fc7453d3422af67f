package main

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/intervia/server/internal/wshandler"
)

// getWsHandler streams lifecycle change events to admin clients.
func getWsHandler(app *App) fiber.Handler {
	return websocket.New(func(ws *websocket.Conn) {
		login, _ := ws.Locals(UsernameKey).(string)

		user := app.users.Get(login)
		if !user.IsAdmin() {
			_ = ws.Close()
			return
		}

		name := uuid.NewString()

		h := wshandler.NewHandler(app.logger, name, ws)

		app.logger.Debug("ws listener connected")
		app.changeCb.SubscribeNamed(name, h.SendChange)
		h.Listen()
		app.logger.Debug("ws listener disconnected")
		app.changeCb.Unsubscribe(name)
	})
}
