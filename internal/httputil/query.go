package httputil

import (
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/tendant/voicehub/pkg/domain"
)

// MaxSearchLength bounds free-text search parameters.
const MaxSearchLength = 100

// ParsePageRequest reads page and pageSize from the query string. Missing
// values take defaults; non-integer or non-positive values are rejected;
// pageSize above the maximum is clamped.
func ParsePageRequest(r *http.Request) (domain.PageRequest, error) {
	q := r.URL.Query()

	page, err := positiveInt(q.Get("page"), "page", domain.DefaultPage)
	if err != nil {
		return domain.PageRequest{}, err
	}
	pageSize, err := positiveInt(q.Get("pageSize"), "pageSize", domain.DefaultPageSize)
	if err != nil {
		return domain.PageRequest{}, err
	}

	return domain.NewPageRequest(page, pageSize), nil
}

func positiveInt(raw, field string, defaultValue int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(field, "must be an integer")
	}
	if n < 1 {
		return 0, domain.NewValidationError(field, "must be at least 1")
	}
	return n, nil
}

// OptionalUUID parses an optional UUID query parameter.
func OptionalUUID(r *http.Request, field string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(field))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, domain.NewValidationError(field, "must be a UUID")
	}
	return &id, nil
}

// SearchParam returns a cleaned free-text search parameter.
func SearchParam(r *http.Request, field string) (string, error) {
	search := removeControlChars(strings.TrimSpace(r.URL.Query().Get(field)))
	if len(search) > MaxSearchLength {
		return "", domain.NewValidationError(field, "must be at most "+strconv.Itoa(MaxSearchLength)+" characters")
	}
	return search, nil
}

// removeControlChars strips all control characters.
func removeControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
