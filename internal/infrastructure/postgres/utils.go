package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/perecederos-api/internal/domain/repository"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return hasCode(err, "23505")
}

// isForeignKeyViolation verifica si un error es una violación de llave foránea (23503).
func isForeignKeyViolation(err error) bool {
	return hasCode(err, "23503")
}

// isInvalidText verifica si el texto no convierte al tipo de la columna (22P02), p. ej. un id que no es UUID.
func isInvalidText(err error) bool {
	return hasCode(err, "22P02")
}

// isNoRow agrupa los errores que significan "no existe esa fila".
func isNoRow(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || isInvalidText(err)
}

// isUUID indica si id puede existir en una columna UUID. Un id mal formado se descarta
// antes de consultar: el error 22P02 abortaría la transacción en curso.
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return false
}

// whereBuilder arma cláusulas WHERE con placeholders numerados.
type whereBuilder struct {
	conds []string
	args  []any
}

func (w *whereBuilder) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, strings.ReplaceAll(cond, "?", fmt.Sprintf("$%d", len(w.args))))
}

// addLike agrega una búsqueda ILIKE '%q%' sobre varias columnas (OR).
func (w *whereBuilder) addLike(q string, cols ...string) {
	q = strings.TrimSpace(q)
	if q == "" {
		return
	}
	w.args = append(w.args, "%"+escapeLike(q)+"%")
	ph := fmt.Sprintf("$%d", len(w.args))
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = c + " ILIKE " + ph
	}
	w.conds = append(w.conds, "("+strings.Join(parts, " OR ")+")")
}

func (w *whereBuilder) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// page agrega LIMIT/OFFSET como últimos argumentos.
func (w *whereBuilder) page(p repository.Page) string {
	w.args = append(w.args, p.Limit, p.Offset)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(w.args)-1, len(w.args))
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// orderBy traduce un Sort lógico a columnas SQL desde una lista blanca; nunca interpola texto del usuario.
func orderBy(s repository.Sort, allowed map[string]string, def, tie string) string {
	col, ok := allowed[s.Field]
	if !ok {
		col = def
	}
	dir := direction(s)
	return " ORDER BY " + col + dir + ", " + tie + dir
}

func direction(s repository.Sort) string {
	if s.Desc {
		return " DESC"
	}
	return " ASC"
}
