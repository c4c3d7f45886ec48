package response

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Response is the common envelope of every JSON reply. Handlers embed it
// and add their own payload fields.
type Response struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func OK() Response {
	return Response{Success: true}
}

func OKMessage(msg string) Response {
	return Response{
		Success: true,
		Message: msg,
	}
}

func Error(msg string) Response {
	return Response{
		Success: false,
		Message: msg,
	}
}

func ValidationError(errs validator.ValidationErrors) Response {
	errMsgs := make(map[string]string, len(errs))

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errMsgs[err.Field()] = "is a required field"
		case "email":
			errMsgs[err.Field()] = "is not a valid email"
		case "min":
			errMsgs[err.Field()] = fmt.Sprintf("must be at least %s characters long", err.Param())
		default:
			errMsgs[err.Field()] = "is not valid"
		}
	}

	return Response{
		Success: false,
		Message: "validation failed",
		Errors:  errMsgs,
	}
}
