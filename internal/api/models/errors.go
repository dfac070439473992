package models

import (
	"errors"
	"fmt"
	"net/http"

	"insulin-infusion/internal/model"

	"github.com/go-playground/validator/v10"
)

// FromError maps a request or engine error to an HTTP status and envelope.
// Every input problem is a 400 naming the offending field where known.
func FromError(err error) (int, ErrorResponse) {
	var inv *model.InvalidInputError
	if errors.As(err, &inv) {
		return http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{
				Code:    "INVALID_INPUT",
				Message: err.Error(),
				Details: map[string]interface{}{"field": inv.Field},
			},
		}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		msg := fmt.Sprintf("%s failed %q validation", fe.Field(), fe.Tag())
		if fe.Tag() == "required" {
			msg = fe.Field() + " is required"
		}
		return http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: msg,
				Details: map[string]interface{}{"field": fe.Field(), "namespace": fe.Namespace()},
			},
		}
	}

	return http.StatusBadRequest, ErrorResponse{
		Error: ErrorDetail{
			Code:    "INVALID_REQUEST",
			Message: err.Error(),
		},
	}
}
