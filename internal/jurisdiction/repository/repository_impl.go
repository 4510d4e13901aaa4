package repository

import (
	"context"

	jurisdictiondomain "github.com/smallbiznis/gsttally/internal/jurisdiction/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) jurisdictiondomain.Repository {
	return &repository{db: db}
}

func (r *repository) FindByName(ctx context.Context, name string) (*jurisdictiondomain.Company, error) {
	var company jurisdictiondomain.Company
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, name, gstin, created_at, updated_at
		 FROM companies
		 WHERE name = ?
		 LIMIT 1`,
		name,
	).Scan(&company).Error
	if err != nil {
		return nil, err
	}
	if company.ID == 0 {
		return nil, nil
	}
	return &company, nil
}

func (r *repository) Upsert(ctx context.Context, company *jurisdictiondomain.Company) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"gstin", "updated_at"}),
		}).
		Create(company).Error
}
