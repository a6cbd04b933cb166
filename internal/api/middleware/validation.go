package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"whisper-stt/internal/api/errors"
)

// Validator interface for domain validation
type Validator interface {
	Validate() error
}

// ValidateForm binds a multipart form and runs its domain validation. Any
// binding failure, including a missing "binding:required" part or a body
// that is not multipart at all, is reported as message.
func ValidateForm(c *gin.Context, req interface{}, message string) error {
	if err := c.ShouldBindWith(req, binding.FormMultipart); err != nil {
		return errors.NewInvalidRequestError(message)
	}

	if validator, ok := req.(Validator); ok {
		if err := validator.Validate(); err != nil {
			return err
		}
	}

	return nil
}
