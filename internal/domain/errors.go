package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound                 = errors.New("recurso no encontrado")
	ErrInvalidInput             = errors.New("entrada inválida")
	ErrUnauthorized             = errors.New("no autorizado")
	ErrForbidden                = errors.New("acceso denegado")
	ErrDuplicateCode            = errors.New("el código de producto ya existe")
	ErrUnknownProduct           = errors.New("producto desconocido")
	ErrUnknownBatch             = errors.New("lote desconocido")
	ErrReferencedEntity         = errors.New("el recurso está referenciado por otros registros")
	ErrAlreadyReceived          = errors.New("el lote ya fue recibido")
	ErrMissingReason            = errors.New("la causa de la baja es obligatoria")
	ErrInsufficientBatchBalance = errors.New("saldo insuficiente en el lote")
	ErrInsufficientStock        = errors.New("stock insuficiente")
	ErrEmptySelection           = errors.New("no se seleccionó ningún lote para la baja")
	ErrInvalidQuantity          = errors.New("la cantidad debe ser mayor que cero")
	// ErrNegativeStock indica una inconsistencia interna: nunca debería ocurrir
	// si la validación previa a la baja es correcta.
	ErrNegativeStock = errors.New("el stock quedaría negativo")
)

// InsufficientBatchBalanceError detalla qué lote no alcanza para la cantidad pedida.
type InsufficientBatchBalanceError struct {
	BatchID     string
	BatchNumber string
	Available   decimal.Decimal
	Requested   decimal.Decimal
}

func (e *InsufficientBatchBalanceError) Error() string {
	return fmt.Sprintf("saldo insuficiente en el lote %s: disponible %s, solicitado %s",
		e.BatchNumber, e.Available.String(), e.Requested.String())
}

// Is permite errors.Is(err, ErrInsufficientBatchBalance).
func (e *InsufficientBatchBalanceError) Is(target error) bool {
	return target == ErrInsufficientBatchBalance
}
