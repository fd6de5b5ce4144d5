// Package pagination разбирает параметры постраничной выдачи из запроса.
package pagination

import (
	"net/http"
	"strconv"
)

// Размер страницы по умолчанию и его верхняя граница.
const (
	DefaultLimit = 10
	MaxLimit     = 50
)

// Parse читает limit и offset из query-параметров запроса. Невалидные
// значения заменяются значениями по умолчанию, limit сверху ограничен
// MaxLimit.
func Parse(r *http.Request) (limit, offset int) {
	limit = DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			offset = v
		}
	}
	return limit, offset
}
