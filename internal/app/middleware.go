package app

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (app *Application) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		app.logger.Info("request completed",
			"method", r.Method,
			"uri", r.URL.RequestURI(),
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// validateRequest checks the request against the operation registered for path in
// the embedded OpenAPI document. Authentication is handled by our own middleware,
// so security requirements are not evaluated here.
func (app *Application) validateRequest(path string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pathItem := app.openapi.Paths.Find(path)
			if pathItem == nil {
				app.serverErrorResponse(w, r, fmt.Errorf("no OpenAPI path item for %s", path))
				return
			}

			operation := pathItem.GetOperation(r.Method)
			if operation == nil {
				app.serverErrorResponse(w, r, fmt.Errorf("no OpenAPI operation for %s %s", r.Method, path))
				return
			}

			pathParams := make(map[string]string)
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				for i, key := range rctx.URLParams.Keys {
					pathParams[key] = rctx.URLParams.Values[i]
				}
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: pathParams,
				Route: &routers.Route{
					Spec:      app.openapi,
					Path:      path,
					PathItem:  pathItem,
					Method:    r.Method,
					Operation: operation,
				},
				Options: &openapi3filter.Options{
					AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
					MultiError:         false,
				},
			}

			err := openapi3filter.ValidateRequest(r.Context(), input)
			if err != nil {
				app.badRequestResponse(w, r, requestValidationError(err))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func requestValidationError(err error) error {
	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.Parameter != nil {
			return fmt.Errorf("invalid %s parameter %q", reqErr.Parameter.In, reqErr.Parameter.Name)
		}

		var schemaErr *openapi3.SchemaError
		if errors.As(reqErr.Err, &schemaErr) {
			if pointer := schemaErr.JSONPointer(); len(pointer) > 0 {
				return fmt.Errorf("body field %q is invalid: %s", strings.Join(pointer, "."), schemaErr.Reason)
			}

			return fmt.Errorf("body is invalid: %s", schemaErr.Reason)
		}

		if reqErr.RequestBody != nil {
			return fmt.Errorf("body is invalid: %s", reqErr.Reason)
		}
	}

	return errors.New("request does not match the API contract")
}
