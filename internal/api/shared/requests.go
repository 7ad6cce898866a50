package shared

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// Shared validator instance for request bodies.
var validate = validator.New()

// DecodeJSON decodes the request body into the given struct. Unknown fields
// are rejected so client typos surface as 400s rather than silently dropped
// input.
func DecodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// ValidateRequest checks a decoded request body against its validate tags.
// Handlers whose request DTOs carry tags beyond the service input (attached
// documents, wrapper fields) must call this before invoking the service.
func ValidateRequest(v interface{}) error {
	return validate.Struct(v)
}
