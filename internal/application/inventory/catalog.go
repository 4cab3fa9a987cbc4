package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/perecederos-api/internal/domain"
	"github.com/jhoicas/perecederos-api/internal/domain/entity"
	"github.com/jhoicas/perecederos-api/internal/domain/repository"
	"github.com/jhoicas/perecederos-api/pkg/logger"
)

// productInvalidator lo implementa la caché de productos; el repositorio directo no lo necesita.
type productInvalidator interface {
	Invalidate(id string)
}

// CatalogUseCase casos de uso del catálogo de productos (nomenclatura).
type CatalogUseCase struct {
	txRunner TxRunner
	products repository.ProductRepository
	reader   repository.ProductReader
	log      *logger.Logger
}

// NewCatalogUseCase construye el caso de uso. reader puede ser una caché sobre products; si es nil se usa products.
func NewCatalogUseCase(
	txRunner TxRunner,
	products repository.ProductRepository,
	reader repository.ProductReader,
	log *logger.Logger,
) *CatalogUseCase {
	if reader == nil {
		reader = products
	}
	return &CatalogUseCase{txRunner: txRunner, products: products, reader: reader, log: log}
}

// CreateProductInput entrada para crear un producto.
type CreateProductInput struct {
	Code          string
	Name          string
	Unit          string
	ShelfLifeDays int
}

// CreateProduct crea un producto. Falla con ErrDuplicateCode si el código ya existe.
func (uc *CatalogUseCase) CreateProduct(ctx context.Context, in CreateProductInput) (*entity.Product, error) {
	code := strings.TrimSpace(in.Code)
	name := strings.TrimSpace(in.Name)
	unit := strings.TrimSpace(in.Unit)
	if code == "" || name == "" || unit == "" || in.ShelfLifeDays < 0 {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.products.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateCode
	}
	product := &entity.Product{
		ID:            uuid.New().String(),
		Code:          code,
		Name:          name,
		Unit:          unit,
		ShelfLifeDays: in.ShelfLifeDays,
		CreatedAt:     time.Now().UTC(),
	}
	// La restricción única de la BD cubre la carrera entre GetByCode y Create.
	if err := uc.products.Create(ctx, product); err != nil {
		return nil, err
	}
	uc.log.Info().Str("product_id", product.ID).Str("code", product.Code).Msg("producto creado")
	return product, nil
}

// GetProduct obtiene un producto por ID.
func (uc *CatalogUseCase) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	p, err := uc.reader.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrUnknownProduct
	}
	return p, nil
}

// ListProducts lista productos con filtro de texto, orden y paginación.
func (uc *CatalogUseCase) ListProducts(ctx context.Context, filter repository.ProductFilter, sort repository.Sort, page repository.Page) ([]*entity.Product, error) {
	return uc.products.List(ctx, filter, sort, page.Normalize())
}

// DeleteProduct elimina un producto solo si ningún lote, operación o stock lo referencia.
// La verificación y el borrado ocurren en la misma transacción con la fila bloqueada.
func (uc *CatalogUseCase) DeleteProduct(ctx context.Context, id string) error {
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		p, err := repos.Products.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrUnknownProduct
		}
		refs, err := repos.Products.CountReferences(ctx, id)
		if err != nil {
			return err
		}
		if refs > 0 {
			return domain.ErrReferencedEntity
		}
		return repos.Products.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	if inv, ok := uc.reader.(productInvalidator); ok {
		inv.Invalidate(id)
	}
	uc.log.Info().Str("product_id", id).Msg("producto eliminado")
	return nil
}
