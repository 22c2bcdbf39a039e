// Package dustbin holds the fixed registry of physical collection points.
package dustbin

import (
	"context"
	"fmt"
	"strings"
	"sync"

	dErrors "smartbin/pkg/domain-errors"
)

// Dustbin is a registered collection point. QRCode is the payload printed on
// the bin and is informational only.
type Dustbin struct {
	ID       string `json:"dustbinId"`
	Location string `json:"location"`
	QRCode   string `json:"qrCode"`
}

// Defaults is the catalog seeded at startup.
var Defaults = []Dustbin{
	{ID: "DB101", Location: "Central Park - Gate 1", QRCode: "QR_DB101"},
	{ID: "DB102", Location: "City Mall - Entrance", QRCode: "QR_DB102"},
	{ID: "DB103", Location: "Metro Station - Platform 2", QRCode: "QR_DB103"},
}

// Catalog is a read-mostly lookup by exact ID.
type Catalog struct {
	mu    sync.RWMutex
	bins  map[string]Dustbin
	order []string
}

// NewCatalog seeds a catalog. Duplicate or blank IDs are rejected.
func NewCatalog(seed ...Dustbin) (*Catalog, error) {
	c := &Catalog{bins: make(map[string]Dustbin, len(seed))}
	for _, d := range seed {
		if err := c.Register(d); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) Register(d Dustbin) error {
	if strings.TrimSpace(d.ID) == "" {
		return dErrors.New(dErrors.CodeValidation, "dustbin id is required")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.bins[d.ID]; ok {
		return dErrors.New(dErrors.CodeConflict, fmt.Sprintf("dustbin %s already registered", d.ID))
	}
	c.bins[d.ID] = d
	c.order = append(c.order, d.ID)
	return nil
}

// Lookup matches IDs exactly; "db101" is not "DB101".
func (c *Catalog) Lookup(_ context.Context, id string) (Dustbin, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.bins[id]
	return d, ok
}

// List returns bins in registration order.
func (c *Catalog) List() []Dustbin {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Dustbin, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.bins[id])
	}
	return out
}
