package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"urlmapper/internal/database"
	"urlmapper/internal/models"
	"urlmapper/internal/service"
	"urlmapper/pkg/response"
)

func handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "pong")
}

type createURLRequest struct {
	TargetURL string `json:"target_url" validate:"required,url"`
}

type urlResponse struct {
	ID        int64     `json:"id"`
	Key       string    `json:"key"`
	TargetURL string    `json:"target_url"`
	IsActive  bool      `json:"is_active"`
	Clicks    int64     `json:"clicks"`
	URL       string    `json:"url,omitempty"`
	AdminURL  string    `json:"admin_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toURLResponse(mapping *models.URLMapping) urlResponse {
	return urlResponse{
		ID:        mapping.ID,
		Key:       mapping.Key,
		TargetURL: mapping.TargetURL,
		IsActive:  mapping.IsActive,
		Clicks:    mapping.Clicks,
		CreatedAt: mapping.CreatedAt,
		UpdatedAt: mapping.UpdatedAt,
	}
}

// baseURL reconstructs the externally visible origin of the request.
// Composing public URLs is transport business; the mapping core only
// knows keys.
func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, r.Host)
}

func handleCreateURL(svc URLService, validate *validator.Validate) http.HandlerFunc {
	const op = "api.http.handleCreateURL"
	const successMsg = "The URL has been shortened successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		var req createURLRequest

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			if errors.Is(err, io.EOF) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.EmptyRequestBodyResponse)
				return
			}

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.BadRequestResponse)
			return
		}

		if err := validate.Struct(req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationErrorResponse(err))
			return
		}

		mapping, err := svc.ShortenURL(r.Context(), req.TargetURL)
		if err != nil {
			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			if errors.Is(err, service.ErrKeyGenerationExhausted) {
				w.Header().Set("Retry-After", "1")
				render.Status(r, http.StatusServiceUnavailable)
				render.JSON(w, r, response.ServerErrorResponse)
				return
			}

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		data := toURLResponse(mapping)
		data.URL = fmt.Sprintf("%s/%s", baseURL(r), mapping.Key)
		data.AdminURL = fmt.Sprintf("%s/api/v1/urls/%s", baseURL(r), mapping.Key)

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.SuccessResponse(successMsg, data))
	}
}

func handleRedirect(svc URLService) http.HandlerFunc {
	const op = "api.http.handleRedirect"

	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")

		mapping, err := svc.ResolveURL(r.Context(), key)
		if err != nil {
			if errors.Is(err, database.ErrMappingNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.ResourceNotFoundResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		http.Redirect(w, r, mapping.TargetURL, http.StatusTemporaryRedirect)
	}
}

func handleInspectURL(svc URLService) http.HandlerFunc {
	const op = "api.http.handleInspectURL"
	const successMsg = "The URL mapping retrieved successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")

		mapping, err := svc.InspectURL(r.Context(), key)
		if err != nil {
			if errors.Is(err, database.ErrMappingNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.ResourceNotFoundResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, toURLResponse(mapping)))
	}
}

func handleDeactivateURL(svc URLService) http.HandlerFunc {
	const op = "api.http.handleDeactivateURL"
	const successMsg = "The URL was successfully deactivated."

	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")

		mapping, err := svc.DeactivateURL(r.Context(), key)
		if err != nil {
			if errors.Is(err, database.ErrMappingNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.ResourceNotFoundResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, toURLResponse(mapping)))
	}
}
