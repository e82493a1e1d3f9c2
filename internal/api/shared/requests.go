package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// MaxBodyBytes caps the size of a JSON request body.
const MaxBodyBytes = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

// DecodeJSON decodes a single JSON value from the request body into v.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON value")
	}
	return nil
}

// ValidateRequest validates v with its own Validate method when it has one,
// else with its struct tags.
func ValidateRequest(v any) error {
	if custom, ok := v.(interface{ Validate() error }); ok {
		return custom.Validate()
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("request validation: %w", err)
	}
	return nil
}
