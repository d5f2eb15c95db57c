// Package response defines the JSON envelope returned by every API
// endpoint, together with canned error payloads and validation details.
package response

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

var EmptyRequestBodyResponse = Response{
	Status:  StatusError,
	Error:   "Empty Request Body",
	Message: "Request body is empty. Please provide necessary data.",
}

var BadRequestResponse = Response{
	Status:  StatusError,
	Error:   "Bad Request",
	Message: "The request couldn't be processed. Please check your input.",
}

var ResourceNotFoundResponse = Response{
	Status:  StatusError,
	Error:   "Resource Not Found",
	Message: "The requested resource was not found.",
}

var APIKeyRequiredResponse = Response{
	Status:  StatusError,
	Error:   "Unauthorized",
	Message: "API key is required.",
}

var InvalidAPIKeyResponse = Response{
	Status:  StatusError,
	Error:   "Forbidden",
	Message: "Invalid API key or insufficient permissions.",
}

var ForbiddenHostResponse = Response{
	Status:  StatusError,
	Error:   "Forbidden",
	Message: "Access is not allowed from this domain.",
}

var URLNotReachableResponse = Response{
	Status:  StatusError,
	Error:   "Validation Error",
	Message: "The new target URL is not accessible or invalid.",
}

var ServerErrorResponse = Response{
	Status:  StatusError,
	Error:   "Server Error",
	Message: "An internal server error occurred. Please try again later.",
}

var ServiceUnavailableResponse = Response{
	Status:  StatusError,
	Error:   "Service Unavailable",
	Message: "The service is temporarily unable to process the request. Please try again later.",
}

type Response struct {
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message"`
	Details []any  `json:"details,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// SuccessResponse builds a success envelope with an optional data payload.
// Only the first data argument is used.
func SuccessResponse(msg string, data ...any) Response {
	resp := Response{
		Status:  StatusSuccess,
		Message: msg,
	}

	if len(data) > 0 {
		resp.Data = data[0]
	}

	return resp
}

// ConflictResponse builds a conflict envelope with a specific message.
func ConflictResponse(msg string) Response {
	return Response{
		Status:  StatusError,
		Error:   "Conflict",
		Message: msg,
	}
}

// ValidationErrorResponse builds a validation envelope with per-field
// details extracted from a validator error.
func ValidationErrorResponse(err error) Response {
	resp := Response{
		Status:  StatusError,
		Error:   "Validation Error",
		Message: "The request contains invalid data. Please check your input.",
	}

	for _, ve := range getValidationErrors(err) {
		resp.Details = append(resp.Details, ve)
	}

	return resp
}

type validationError struct {
	Field string `json:"field"`
	Value string `json:"value"`
	Issue string `json:"issue"`
}

func getValidationErrors(err error) []validationError {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil
	}

	var errs []validationError

	for _, e := range validationErrs {
		ve := validationError{
			Field: e.Field(),
			Value: fmt.Sprintf("%v", e.Value()),
		}

		switch e.Tag() {
		case "required":
			ve.Issue = "This field is required."
		case "url":
			ve.Issue = "Invalid url."
		case "fqdn":
			ve.Issue = "Invalid domain name."
		case "len":
			ve.Issue = fmt.Sprintf("Must be exactly %s characters long.", e.Param())
		case "max":
			ve.Issue = fmt.Sprintf("Must be at most %s characters long.", e.Param())
		case "alphanum":
			ve.Issue = "Must contain only letters and digits."
		default:
			ve.Issue = "Invalid value."
		}

		errs = append(errs, ve)
	}

	return errs
}
