package middleware

import (
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"

	"github.com/nazrin/tadikahub/internal/app/models/dto"
)

// ContextValidatedBody is the context key the validated request body is
// stored under.
const ContextValidatedBody = "validatedBody"

// ValidateRequest binds and validates a JSON request body against the given
// model, aborting with a 400 carrying per-field messages on failure. A fresh
// instance is allocated per request so concurrent handler chains never share
// a body.
func ValidateRequest(model interface{}) gin.HandlerFunc {
	typ := reflect.TypeOf(model)
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}

	return func(c *gin.Context) {
		obj := reflect.New(typ).Interface()
		if err := c.ShouldBindJSON(obj); err != nil {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
			c.Abort()
			return
		}

		c.Set(ContextValidatedBody, obj)
		c.Next()
	}
}

// BodyFromContext returns the request body placed in the context by
// ValidateRequest, typed.
func BodyFromContext[T any](c *gin.Context) (*T, bool) {
	value, exists := c.Get(ContextValidatedBody)
	if !exists {
		return nil, false
	}
	body, ok := value.(*T)
	return body, ok
}
