package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"
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

// createDomainRequest represents the request payload for registering a
// domain redirect.
type createDomainRequest struct {
	Domain      string `json:"domain" validate:"required,fqdn,max=255"`
	RedirectURL string `json:"redirect_url" validate:"required,url,max=2048"`
}

// updateDomainRequest represents the request payload for updating a domain
// redirect. Absent fields are left unchanged.
type updateDomainRequest struct {
	RedirectURL *string `json:"redirect_url,omitempty" validate:"omitempty,url,max=2048"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// domainResponse represents the response payload for a domain operation.
type domainResponse struct {
	ID          int64     `json:"id"`
	Domain      string    `json:"domain"`
	RedirectURL string    `json:"redirect_url"`
	CreatedAt   time.Time `json:"created_at"`
	IsActive    bool      `json:"is_active"`
}

func toDomainResponse(domain *models.Domain) domainResponse {
	return domainResponse{
		ID:          domain.ID,
		Domain:      domain.Domain,
		RedirectURL: domain.RedirectURL,
		CreatedAt:   domain.CreatedAt,
		IsActive:    domain.IsActive,
	}
}

// handleCreateDomain handles POST requests to register a domain redirect.
//
// Registration is rejected while any record, active or not, holds the
// domain string.
func handleCreateDomain(svc DomainService, validate *validator.Validate) http.HandlerFunc {
	const op = "api.http.handleCreateDomain"
	const successMsg = "The domain redirect has been registered successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		var req createDomainRequest

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

		domain, err := svc.CreateDomain(r.Context(), req.Domain, req.RedirectURL)
		if err != nil {
			if errors.Is(err, database.ErrDomainExists) {
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.ConflictResponse("This domain is already registered."))
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.SuccessResponse(successMsg, toDomainResponse(domain)))
	}
}

// handleListDomains handles GET requests for the active domain redirects.
func handleListDomains(svc DomainService) http.HandlerFunc {
	const op = "api.http.handleListDomains"
	const successMsg = "The domain redirects retrieved successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		domains, err := svc.ListDomains(r.Context())
		if err != nil {
			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		data := make([]domainResponse, 0, len(domains))
		for _, domain := range domains {
			data = append(data, toDomainResponse(domain))
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, data))
	}
}

// handleModifyDomain handles PUT requests to modify a domain redirect.
func handleModifyDomain(svc DomainService, validate *validator.Validate) http.HandlerFunc {
	const op = "api.http.handleModifyDomain"
	const successMsg = "The domain redirect was successfully modified."

	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "domainID"), 10, 64)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.BadRequestResponse)
			return
		}

		var req updateDomainRequest

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

		domain, err := svc.ModifyDomain(r.Context(), id, service.DomainUpdate{
			RedirectURL: req.RedirectURL,
			IsActive:    req.IsActive,
		})
		if err != nil {
			if errors.Is(err, database.ErrDomainNotFound) {
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
		render.JSON(w, r, response.SuccessResponse(successMsg, toDomainResponse(domain)))
	}
}

// handleDeactivateDomain handles DELETE requests to deactivate a domain
// redirect. The record is soft-deleted, matching URL deletion, so the
// domain string stays reserved.
func handleDeactivateDomain(svc DomainService) http.HandlerFunc {
	const op = "api.http.handleDeactivateDomain"
	const successMsg = "The domain redirect was successfully deactivated."

	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "domainID"), 10, 64)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.BadRequestResponse)
			return
		}

		if err := svc.DeactivateDomain(r.Context(), id); err != nil {
			if errors.Is(err, database.ErrDomainNotFound) {
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
