package validator

import (
	"github.com/go-playground/validator/v10"
)

// Validate is a shared singleton; the validator caches struct metadata, so
// one instance is reused everywhere (config validation at startup).
var Validate *validator.Validate

func init() {
	Validate = validator.New()
}
