package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"unicode/utf8"
)

const (
	msgFieldRequired = "This field is required."
	msgInvalidEmail  = "Enter a valid email address."
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// fieldErrors is a per-field validation error map:
//
//	{"title": ["This field is required."]}
type fieldErrors map[string][]string

func (f fieldErrors) add(field, msg string) {
	f[field] = append(f[field], msg)
}

func (f fieldErrors) requireNonBlank(field, value string) {
	if value == "" {
		f.add(field, msgFieldRequired)
	}
}

// requireMaxLen rejects values longer than limit characters, before the
// store-level column bound turns them into an opaque database error.
func (f fieldErrors) requireMaxLen(field, value string, limit int) {
	if utf8.RuneCountInString(value) > limit {
		f.add(field, fmt.Sprintf("Ensure this field has no more than %d characters.", limit))
	}
}

// decodeJSON fills dst from the request body. A missing or malformed body is
// not an error here: dst keeps its zero values and the per-field required
// checks report every field as missing, which is the contract clients of the
// original API rely on.
func decodeJSON(r *http.Request, dst any) {
	if r.Body == nil {
		return
	}
	_ = json.NewDecoder(r.Body).Decode(dst)
}
