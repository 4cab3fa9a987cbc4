package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/perecederos-api/internal/application/dto"
	"github.com/jhoicas/perecederos-api/internal/domain"
	"github.com/jhoicas/perecederos-api/internal/domain/repository"
)

// pageFromQuery lee limit/offset (por defecto 20/0, máximo 100).
func pageFromQuery(c *fiber.Ctx) repository.Page {
	return repository.Page{
		Limit:  c.QueryInt("limit", 20),
		Offset: c.QueryInt("offset", 0),
	}.Normalize()
}

func pageResponse(p repository.Page, count int) dto.PageResponse {
	return dto.PageResponse{Limit: p.Limit, Offset: p.Offset, Count: count}
}

// sortFromQuery lee ?sort=campo o ?sort=-campo (descendente).
func sortFromQuery(c *fiber.Ctx) repository.Sort {
	raw := strings.TrimSpace(c.Query("sort"))
	if strings.HasPrefix(raw, "-") {
		return repository.Sort{Field: raw[1:], Desc: true}
	}
	return repository.Sort{Field: raw}
}

// dateQuery parsea un parámetro YYYY-MM-DD opcional. endOfDay extiende el límite al final del día
// (para columnas con hora).
func dateQuery(c *fiber.Ctx, key string, endOfDay bool) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dto.DateLayout, raw)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func parseDate(raw string) (time.Time, error) {
	t, err := time.Parse(dto.DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, domain.ErrInvalidInput
	}
	return t, nil
}
