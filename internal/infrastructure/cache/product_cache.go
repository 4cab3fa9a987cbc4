// Package cache lecturas de catálogo con caché LRU en proceso.
package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/jhoicas/perecederos-api/internal/domain/entity"
	"github.com/jhoicas/perecederos-api/internal/domain/repository"
)

var _ repository.ProductReader = (*ProductCache)(nil)

// ProductCache read-through sobre un ProductReader. Solo guarda aciertos; un producto
// inexistente siempre se vuelve a consultar. Los productos no se editan, solo se borran (Invalidate).
//
// Invalidate solo alcanza a este proceso: con varias instancias, otra puede servir un producto
// borrado hasta que venza su TTL.
type ProductCache struct {
	next  repository.ProductReader
	cache *expirable.LRU[string, entity.Product]

	mu  sync.Mutex
	gen uint64 // sube con cada Invalidate
}

// NewProductCache construye la caché con capacidad size (> 0) y vida ttl (> 0) por entrada.
func NewProductCache(next repository.ProductReader, size int, ttl time.Duration) (*ProductCache, error) {
	if size <= 0 {
		return nil, errors.New("cache: el tamaño debe ser positivo")
	}
	if ttl <= 0 {
		return nil, errors.New("cache: el TTL debe ser positivo")
	}
	return &ProductCache{next: next, cache: expirable.NewLRU[string, entity.Product](size, nil, ttl)}, nil
}

// GetByID devuelve una copia del producto cacheado o lo lee del repositorio.
// Si hubo un Invalidate mientras se leía, el resultado no se guarda: podría ser un producto ya borrado.
func (c *ProductCache) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	if p, ok := c.cache.Get(id); ok {
		return &p, nil
	}
	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()

	p, err := c.next.GetByID(ctx, id)
	if err != nil || p == nil {
		return p, err
	}

	c.mu.Lock()
	if c.gen == gen {
		c.cache.Add(id, *p)
	}
	c.mu.Unlock()
	return p, nil
}

// Invalidate saca el producto de la caché (tras un borrado).
func (c *ProductCache) Invalidate(id string) {
	c.mu.Lock()
	c.gen++
	c.cache.Remove(id)
	c.mu.Unlock()
}

// Len cantidad de productos en caché.
func (c *ProductCache) Len() int {
	return c.cache.Len()
}
