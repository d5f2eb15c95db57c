package http

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/investingindigital/url-shortener/internal/database"
	"github.com/investingindigital/url-shortener/internal/models"
	"github.com/investingindigital/url-shortener/internal/service"
	"github.com/investingindigital/url-shortener/pkg/response"
)

// shortenURLRequest represents the request payload for creating a
// shortened URL.
type shortenURLRequest struct {
	TargetURL  string `json:"target_url" validate:"required,url"`
	CustomCode string `json:"custom_code,omitempty" validate:"omitempty,len=6,alphanum"`
}

// updateURLRequest represents the request payload for updating a shortened
// URL. Absent fields are left unchanged.
type updateURLRequest struct {
	TargetURL *string `json:"target_url,omitempty" validate:"omitempty,url"`
	ShortCode *string `json:"short_code,omitempty" validate:"omitempty,len=6,alphanum"`
	IsActive  *bool   `json:"is_active,omitempty"`
}

// urlResponse represents the response payload for a shortened URL operation.
type urlResponse struct {
	TargetURL string    `json:"target_url"`
	ShortCode string    `json:"short_code"`
	CreatedAt time.Time `json:"created_at"`
	IsActive  bool      `json:"is_active"`
}

func toURLResponse(url *models.URL) urlResponse {
	return urlResponse{
		TargetURL: url.OriginalURL,
		ShortCode: url.ShortCode,
		CreatedAt: url.CreatedAt,
		IsActive:  url.IsActive,
	}
}

// handleShortenURL handles POST requests to shorten a URL.
//
// Shortening the same URL twice returns the same short code. A requested
// custom code that is held by an active mapping yields 409.
func handleShortenURL(svc URLService, validate *validator.Validate) http.HandlerFunc {
	const op = "api.http.handleShortenURL"
	const successMsg = "The URL has been shortened successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		var req shortenURLRequest

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

		url, err := svc.ShortenURL(r.Context(), req.TargetURL, req.CustomCode)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrShortCodeTaken), errors.Is(err, database.ErrShortCodeExists):
				msg := "This custom code is already taken by an active URL."
				if req.CustomCode == "" {
					msg = "The generated code was just claimed by another request. Please retry."
				}

				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.ConflictResponse(msg))
			case errors.Is(err, database.ErrURLHashExists):
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.ConflictResponse("This URL was just shortened by another request. Please retry."))
			case errors.Is(err, service.ErrMaxRetriesExceeded):
				httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

				render.Status(r, http.StatusServiceUnavailable)
				render.JSON(w, r, response.ServiceUnavailableResponse)
			default:
				httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.ServerErrorResponse)
			}
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.SuccessResponse(successMsg, toURLResponse(url)))
	}
}

// handleRedirect handles GET requests for a short code, redirecting to the
// original URL. Codes that were never issued and codes that were
// deactivated both yield 404.
func handleRedirect(svc URLService) http.HandlerFunc {
	const op = "api.http.handleRedirect"

	return func(w http.ResponseWriter, r *http.Request) {
		shortCode := chi.URLParam(r, "shortCode")

		url, err := svc.ResolveShortCode(r.Context(), shortCode)
		if err != nil {
			if errors.Is(err, database.ErrURLNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.ResourceNotFoundResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		http.Redirect(w, r, url.OriginalURL, http.StatusFound)
	}
}

// handleModifyURL handles PUT requests to modify an existing URL mapping.
//
// A new target URL must pass the reachability probe. A short code rename is
// rejected while another active mapping holds the new code.
func handleModifyURL(svc URLService, validate *validator.Validate) http.HandlerFunc {
	const op = "api.http.handleModifyURL"
	const successMsg = "The URL was successfully modified."

	return func(w http.ResponseWriter, r *http.Request) {
		var req updateURLRequest

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

		shortCode := chi.URLParam(r, "shortCode")

		url, err := svc.ModifyURL(r.Context(), shortCode, service.URLUpdate{
			TargetURL: req.TargetURL,
			ShortCode: req.ShortCode,
			IsActive:  req.IsActive,
		})
		if err != nil {
			switch {
			case errors.Is(err, database.ErrURLNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.ResourceNotFoundResponse)
			case errors.Is(err, service.ErrURLNotReachable):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.URLNotReachableResponse)
			case errors.Is(err, service.ErrShortCodeTaken), errors.Is(err, database.ErrShortCodeExists):
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.ConflictResponse("This short code is already taken by an active URL."))
			case errors.Is(err, database.ErrURLHashExists):
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.ConflictResponse("This URL is already mapped by another record."))
			default:
				httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.ServerErrorResponse)
			}
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, toURLResponse(url)))
	}
}

// handleDeactivateURL handles DELETE requests to deactivate a URL mapping.
//
// The record is soft-deleted; its code stays reserved until reclaimed.
func handleDeactivateURL(svc URLService) http.HandlerFunc {
	const op = "api.http.handleDeactivateURL"
	const successMsg = "The URL was successfully deactivated."

	return func(w http.ResponseWriter, r *http.Request) {
		shortCode := chi.URLParam(r, "shortCode")

		err := svc.DeactivateURL(r.Context(), shortCode)
		if err != nil {
			if errors.Is(err, database.ErrURLNotFound) {
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
		render.JSON(w, r, response.SuccessResponse(successMsg))
	}
}

// handleRoot handles GET requests to the root path. A Host header matching
// an active domain redirect yields 302; anything else gets the welcome
// payload.
func handleRoot(svc DomainService) http.HandlerFunc {
	const op = "api.http.handleRoot"
	const welcomeMsg = "Welcome to URL Shortener API"

	return func(w http.ResponseWriter, r *http.Request) {
		domain, err := svc.ResolveHost(r.Context(), r.Host)
		if err != nil {
			if !errors.Is(err, database.ErrDomainNotFound) {
				httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.ServerErrorResponse)
				return
			}

			render.Status(r, http.StatusOK)
			render.JSON(w, r, response.SuccessResponse(welcomeMsg))
			return
		}

		http.Redirect(w, r, domain.RedirectURL, http.StatusFound)
	}
}

// handleTestAPIKey confirms that the presented API key is valid. The auth
// middleware has already done the work by the time this runs.
func handleTestAPIKey(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, response.SuccessResponse("API key is valid."))
}
