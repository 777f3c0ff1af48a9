// Package catalog reads the external HR backend's master data: areas,
// secciones, cargos and trabajadores. The engine only uses it for display
// names; routing correctness never depends on a catalog response.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dquispe/vacaciones-engine/internal/models"
)

const cacheTTL = 5 * time.Minute

type cacheEntry struct {
	value   interface{}
	expires time.Time
}

// Client is an HTTP client for the HR catalog API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// NewClient creates a new catalog client
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
		cache:   make(map[string]cacheEntry),
	}
}

// GetArea retrieves one area by code.
func (c *Client) GetArea(ctx context.Context, codigo string) (*models.CatalogItem, error) {
	return c.getItem(ctx, "areas", codigo)
}

// GetSeccion retrieves one seccion by code.
func (c *Client) GetSeccion(ctx context.Context, codigo string) (*models.CatalogItem, error) {
	return c.getItem(ctx, "secciones", codigo)
}

// GetCargo retrieves one cargo by code.
func (c *Client) GetCargo(ctx context.Context, codigo string) (*models.CatalogItem, error) {
	return c.getItem(ctx, "cargos", codigo)
}

// GetTrabajador retrieves one worker by code.
func (c *Client) GetTrabajador(ctx context.Context, codigo string) (*models.Trabajador, error) {
	key := "trabajadores/" + codigo
	if cached, ok := c.fromCache(key); ok {
		return cached.(*models.Trabajador), nil
	}

	var t models.Trabajador
	if err := c.get(ctx, key, &t); err != nil {
		return nil, err
	}
	c.store(key, &t)
	return &t, nil
}

// SearchTrabajadores queries workers by free text.
func (c *Client) SearchTrabajadores(ctx context.Context, query string) ([]*models.Trabajador, error) {
	var result []*models.Trabajador
	path := "trabajadores?q=" + url.QueryEscape(query)
	if err := c.get(ctx, path, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// ListAreas retrieves all areas.
func (c *Client) ListAreas(ctx context.Context) ([]*models.CatalogItem, error) {
	return c.listItems(ctx, "areas")
}

// ListSecciones retrieves all secciones.
func (c *Client) ListSecciones(ctx context.Context) ([]*models.CatalogItem, error) {
	return c.listItems(ctx, "secciones")
}

// ListCargos retrieves all cargos.
func (c *Client) ListCargos(ctx context.Context) ([]*models.CatalogItem, error) {
	return c.listItems(ctx, "cargos")
}

func (c *Client) getItem(ctx context.Context, kind, codigo string) (*models.CatalogItem, error) {
	key := kind + "/" + codigo
	if cached, ok := c.fromCache(key); ok {
		return cached.(*models.CatalogItem), nil
	}

	var item models.CatalogItem
	if err := c.get(ctx, key, &item); err != nil {
		return nil, err
	}
	c.store(key, &item)
	return &item, nil
}

func (c *Client) listItems(ctx context.Context, kind string) ([]*models.CatalogItem, error) {
	var items []*models.CatalogItem
	if err := c.get(ctx, kind, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("Catalog request failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("catalog entry not found: %s", path)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Catalog returned unexpected status",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return fmt.Errorf("catalog returned status %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode catalog response: %w", err)
	}
	return nil
}

func (c *Client) fromCache(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.cache[key]
	if !ok || time.Now().After(entry.expires) {
		return nil, false
	}
	return entry.value, true
}

func (c *Client) store(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[key] = cacheEntry{value: value, expires: time.Now().Add(cacheTTL)}
}
