package domain

import (
	"context"
	"time"
)

// RateResolver resolves the flat GST percentage configured for an item.
// It never fails: lookup problems degrade to a zero rate with a fallback reason.
type RateResolver interface {
	Resolve(ctx context.Context, itemCode, company string) Resolution
}

// RateCache stores successful resolutions keyed by item and company.
type RateCache interface {
	Get(ctx context.Context, key string) (Resolution, bool)
	Set(ctx context.Context, key string, res Resolution)
	Invalidate(ctx context.Context)
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Disable(ctx context.Context, id string) (*Response, error)
}

type ListRequest struct {
	Name     string
	Company  string
	Disabled *bool
}

type CreateRequest struct {
	Name     string   `json:"name"`
	Title    string   `json:"title"`
	Company  string   `json:"company"`
	GSTRate  *float64 `json:"gst_rate"`
	Disabled *bool    `json:"disabled"`
}

type UpdateRequest struct {
	ID      string   `json:"id"`
	Title   *string  `json:"title,omitempty"`
	GSTRate *float64 `json:"gst_rate,omitempty"`
}

type Response struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Title     string    `json:"title"`
	Company   string    `json:"company"`
	GSTRate   *float64  `json:"gst_rate,omitempty"`
	Disabled  bool      `json:"disabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
