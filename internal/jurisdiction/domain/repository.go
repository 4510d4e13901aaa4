package domain

import "context"

type Repository interface {
	FindByName(ctx context.Context, name string) (*Company, error)
	Upsert(ctx context.Context, company *Company) error
}
