// Package routes declares the application's route table and pages.
package routes

import (
	"net/http"

	advisor "github.com/marycampus/advisor"
	"github.com/marycampus/advisor/app/routes/api"
	"github.com/marycampus/advisor/pkg/router"
)

// RouteTable is the declarative route table. The chat is the index and
// loads eagerly; the Q&A page defers its load to first visit; profile
// setup is eager; the catch-all keeps unknown paths inside the shell.
func RouteTable() []router.Route {
	return []router.Route{
		{
			Path:   "/",
			Layout: AppLayout,
			Children: []router.Route{
				{Index: true, Page: ChatPage},
				{Path: "qa", Lazy: LoadAskPage},
				{Path: "profile", Page: ProfilePage},
				{Path: "*", Page: NotFoundPage},
			},
		},
	}
}

// Register installs the table, fallbacks, and API endpoints on app.
// The table freezes here; anything registered afterwards fails.
func Register(app *advisor.App) error {
	if err := app.SetNotFound(NotFoundPage); err != nil {
		return err
	}
	if err := app.SetErrorPage(ErrorPage); err != nil {
		return err
	}
	if err := app.API(http.MethodGet, "/api/health", api.Health); err != nil {
		return err
	}
	return app.Routes(RouteTable()...)
}
