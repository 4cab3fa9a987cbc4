package memory

import (
	"strings"
	"time"

	"github.com/jhoicas/perecederos-api/internal/domain/repository"
	"golang.org/x/text/cases"
)

// containsFold búsqueda de subcadena sin distinguir mayúsculas (equivalente a ILIKE '%q%').
func containsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	fold := cases.Fold()
	return strings.Contains(fold.String(haystack), fold.String(needle))
}

func matchesAny(needle string, fields ...string) bool {
	if needle == "" {
		return true
	}
	for _, f := range fields {
		if containsFold(f, needle) {
			return true
		}
	}
	return false
}

// inRange verifica from <= t <= to con límites opcionales.
func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}

// paginate aplica limit/offset sobre una lista ya ordenada.
func paginate[T any](list []T, page repository.Page) []T {
	if page.Offset >= len(list) {
		return []T{}
	}
	end := len(list)
	if page.Limit > 0 && page.Offset+page.Limit < end {
		end = page.Offset + page.Limit
	}
	return list[page.Offset:end]
}

// compareStrings devuelve -1, 0, 1 sin distinguir mayúsculas.
func compareStrings(a, b string) int {
	fold := cases.Fold()
	return strings.Compare(fold.String(a), fold.String(b))
}

func compareTimes(a, b time.Time) int {
	return a.Compare(b)
}

// ordered aplica la dirección del Sort a una comparación ascendente.
func ordered(cmp int, desc bool) int {
	if desc {
		return -cmp
	}
	return cmp
}
