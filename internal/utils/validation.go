package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ValidationMessages turns validator errors into a field → message map keyed by the
// field's form or JSON name. Other errors yield nil.
func ValidationMessages(err error) map[string]string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return nil
	}
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		out[lowerFirst(e.Field())] = messageFor(e)
	}
	return out
}

func messageFor(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return fmt.Sprintf("must be at most %s characters", e.Param())
	default:
		return fmt.Sprintf("failed the %q check", e.Tag())
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// BindAndValidate binds the request (JSON, form or multipart, by content type) to a
// struct and runs its binding rules. On failure it writes the error response and
// returns false.
func BindAndValidate(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBind(obj); err != nil {
		if msgs := ValidationMessages(err); msgs != nil {
			FieldErrors(c, msgs)
			return false
		}
		BadRequest(c, "Invalid request payload: "+err.Error())
		return false
	}
	return true
}
