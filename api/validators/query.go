package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/orderhub/orderhub-backend/pkg/errors"
)

// OptionalID reads an optional positive integer query parameter. A missing
// or empty value yields nil.
func OptionalID(r *http.Request, name string) (*int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, name+" must be a positive integer")
	}
	return &id, nil
}

// IDList splits a comma-separated id string, silently skipping blanks and
// non-numeric entries. The original wire contract tolerated junk items, so
// only an entirely unusable list is an error.
func IDList(raw string) ([]int64, error) {
	ids := make([]int64, 0)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no valid ids provided")
	}
	return ids, nil
}

// BoolString parses the "true"/"false" strings used by the partner state
// endpoint.
func BoolString(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "on":
		return true, nil
	case "false", "0", "off":
		return false, nil
	}
	return false, pkgerrors.New(pkgerrors.CodeValidation, "state must be \"true\" or \"false\"")
}
