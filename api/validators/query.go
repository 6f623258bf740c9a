package validators

import (
	"fmt"
	"net/http"
	"strconv"

	pkgerrors "github.com/calderacafe/brewstock-backend/pkg/errors"
)

// ParseQueryInt reads an optional integer query parameter, returning fallback
// when the parameter is absent.
func ParseQueryInt(r *http.Request, name string, fallback, min, max int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("%s must be an integer", name)).
			WithDetails(map[string]string{name: "must be an integer"})
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s out of range", name)).
			WithDetails(map[string]string{name: fmt.Sprintf("must be between %d and %d", min, max)})
	}
	return value, nil
}

// ParseQueryBool reads an optional boolean query parameter.
func ParseQueryBool(r *http.Request, name string, fallback bool) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("%s must be a boolean", name)).
			WithDetails(map[string]string{name: "must be true or false"})
	}
	return value, nil
}
