package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/intervia/server/internal/model"
)

type TestApp struct {
	*App
	api *HTTPApi
}

func User(login, pass, role string, approved bool) *model.User {
	u := &model.User{
		Login:    login,
		Email:    login + "@test",
		Role:     role,
		Approved: approved,
	}

	if err := u.SetPassword(pass); err != nil {
		panic(err)
	}

	return u
}

func NewTestApp() *TestApp {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn})))

	cfg := NewAppConfig()
	cfg.Set("db", ":memory:")
	cfg.Set("users_file", "")

	app := &TestApp{App: NewApp(cfg)}

	if err := app.users.Start(); err != nil {
		panic(err)
	}

	if err := app.dbm.Save(User("adm1", "111", model.RoleAdmin, true)); err != nil {
		panic(err)
	}

	app.dbm.Save(User("school1", "222", model.RoleSchool, true))
	app.dbm.Save(User("op1", "333", model.RoleOperator, true))
	app.dbm.Save(User("op2", "444", model.RoleOperator, true))

	app.api = NewHTTPApi(app.App, "localhost:1234")

	return app
}

func (app *TestApp) Req(method, url, login, pass string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequest(method, url, body)

	if err != nil {
		return nil, err
	}

	if login != "" {
		req.SetBasicAuth(login, pass)
	}

	return app.api.f.Test(req, 3000)
}

func (app *TestApp) ReqJSON(method, url, login, pass string, obj any) (*http.Response, error) {
	d, err := json.Marshal(obj)

	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(method, url, bytes.NewReader(d))

	if err != nil {
		return nil, err
	}

	req.Header.Add(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Add(fiber.HeaderAccept, fiber.MIMEApplicationJSON)

	if login != "" {
		req.SetBasicAuth(login, pass)
	}

	return app.api.f.Test(req, 3000)
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	m := make(map[string]any)
	require.NotNil(t, resp.Body)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&m))

	return m
}

func TestPublicRoutes(t *testing.T) {
	app := NewTestApp()

	app.dbm.Save(&model.Mission{UID: "m1", Title: "t1", SchoolLogin: "school1", Status: model.MissionActive})
	app.dbm.Save(&model.Mission{UID: "m2", Title: "t2", SchoolLogin: "school1", Status: model.MissionDraft})

	// no credentials needed on the public board
	resp, err := app.Req("GET", "/api/public/missions", "", "", nil)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	require.EqualValues(t, 1, body["total"])

	resp, err = app.Req("GET", "/api/public/challenges", "", "", nil)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// everything under /api proper requires auth
	resp, err = app.Req("GET", "/api/missions", "", "", nil)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Req("GET", "/api/missions", "op1", "wrong", nil)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Req("GET", "/api/missions", "op1", "333", nil)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestMissionLifecycleApi(t *testing.T) {
	app := NewTestApp()

	resp, err := app.ReqJSON("POST", "/api/missions", "school1", "222",
		fiber.Map{"title": "Atelier robotique", "description": "demo"})
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	uid, _ := decode(t, resp)["uid"].(string)
	require.NotEmpty(t, uid)

	// applying to a draft is an invalid transition, not a conflict
	resp, err = app.Req("POST", "/api/missions/"+uid+"/apply", "op1", "333", nil)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	require.Equal(t, "invalid transition", decode(t, resp)["error"])

	resp, err = app.Req("POST", "/api/missions/"+uid+"/activate", "school1", "222", nil)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Req("POST", "/api/missions/"+uid+"/apply", "op1", "333", nil)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "op1", decode(t, resp)["assigned_operator"])

	// the loser of the assignment race gets a distinct 409 body
	resp, err = app.Req("POST", "/api/missions/"+uid+"/apply", "op2", "444", nil)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	require.Equal(t, "already assigned", decode(t, resp)["error"])

	resp, err = app.Req("POST", "/api/missions/"+uid+"/complete", "school1", "222", nil)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, model.MissionCompleted, decode(t, resp)["status"])

	resp, err = app.Req("POST", "/api/missions/no-such-uid/apply", "op1", "333", nil)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAvailabilityApi(t *testing.T) {
	app := NewTestApp()

	// schools have no availability record
	resp, err := app.Req("GET", "/api/availability", "school1", "222", nil)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// first read is the lazy default
	resp, err = app.Req("GET", "/api/availability", "op1", "333", nil)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, true, decode(t, resp)["is_available"])

	past := time.Now().Add(-48 * time.Hour)

	resp, err = app.ReqJSON("PUT", "/api/availability", "op1", "333",
		fiber.Map{"is_available": false, "unavailable_until": past})
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.NotEmpty(t, decode(t, resp)["fields"])

	until := time.Now().Add(5*24*time.Hour + time.Hour)

	resp, err = app.ReqJSON("PUT", "/api/availability", "op1", "333",
		fiber.Map{"is_available": false, "unavailable_until": until, "notes": "exams"})
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	require.Equal(t, false, body["is_available"])
	require.EqualValues(t, 6, body["days_remaining"])
}
