package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/metinatakli/movie-booking-system/api"
	"github.com/metinatakli/movie-booking-system/internal/auth"
	appmiddleware "github.com/metinatakli/movie-booking-system/internal/middleware"
	"github.com/riandyrn/otelchi"
)

const basePath = "/api/v1.0/moviebooking"

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(appmiddleware.NotFoundHandler)
	r.MethodNotAllowed(appmiddleware.MethodNotAllowedHandler)

	r.Use(middleware.RequestID)
	r.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(r)))
	r.Use(app.logRequest)
	r.Use(appmiddleware.RecoverPanic(app.logger))

	r.With(app.validateRequest("/healthcheck")).Get("/healthcheck", app.GetHealth)
	r.Get("/openapi.yaml", app.GetOpenAPISpec)

	r.Route(basePath, func(r chi.Router) {
		r.With(app.validateRequest(basePath+"/all")).Get("/all", app.ListShowingsHandler)
		r.With(app.validateRequest(basePath+"/movies/search/{movieName}")).
			Get("/movies/search/{movieName}", app.SearchShowingsHandler)

		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Authenticate(app.verifier))

			r.With(
				appmiddleware.RequireRole(auth.RoleUser, auth.RoleAdmin),
				app.validateRequest(basePath+"/{movieName}/book"),
			).Post("/{movieName}/book", app.BookTicketsHandler)

			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(auth.RoleAdmin))

				r.With(app.validateRequest(basePath+"/addmovie")).Post("/addmovie", app.AddShowingHandler)
				r.With(app.validateRequest(basePath+"/getallbookedtickets/{movieName}")).
					Get("/getallbookedtickets/{movieName}", app.GetBookedTicketsHandler)
				r.With(app.validateRequest(basePath+"/{movieName}/update")).
					Put("/{movieName}/update", app.RefreshTicketStatusHandler)
				r.With(app.validateRequest(basePath+"/{movieName}/delete")).
					Delete("/{movieName}/delete", app.DeleteMovieHandler)
			})
		})
	})

	return r
}

func (app *Application) GetOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	w.Write(api.SpecYAML())
}
