package inventory

import "time"

// DateOnly trunca un instante a la fecha (medianoche UTC).
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ExpirationDate calcula la fecha de vencimiento de un lote:
// FechaProducción + días de vida útil.
func ExpirationDate(productionDate time.Time, shelfLifeDays int) time.Time {
	return DateOnly(productionDate).AddDate(0, 0, shelfLifeDays)
}

// ResolveShelfLife devuelve la vida útil a aplicar: el override del lote tiene prioridad sobre la del producto.
func ResolveShelfLife(productDays int, override *int) int {
	if override != nil {
		return *override
	}
	return productDays
}
