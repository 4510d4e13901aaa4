package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	taxdomain "github.com/smallbiznis/gsttally/internal/tax/domain"
	"github.com/smallbiznis/gsttally/pkg/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) taxdomain.Repository {
	return &repository{db: db}
}

func (r *repository) FirstTemplateName(ctx context.Context, itemCode string) (string, error) {
	var row struct {
		ItemTaxTemplate string
	}
	err := r.db.WithContext(ctx).Raw(
		`SELECT item_tax_template
		 FROM item_taxes
		 WHERE item_code = ?
		 ORDER BY idx ASC, id ASC
		 LIMIT 1`,
		itemCode,
	).Scan(&row).Error
	if err != nil {
		return "", err
	}
	return row.ItemTaxTemplate, nil
}

func (r *repository) FindTemplateByName(ctx context.Context, name string) (*taxdomain.ItemTaxTemplate, error) {
	var tpl taxdomain.ItemTaxTemplate
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, name, title, company, gst_rate, disabled, created_at, updated_at
		 FROM item_tax_templates
		 WHERE name = ?
		 LIMIT 1`,
		name,
	).Scan(&tpl).Error
	if err != nil {
		return nil, err
	}
	if tpl.ID == 0 {
		return nil, nil
	}
	return &tpl, nil
}

func (r *repository) CreateTemplate(ctx context.Context, tpl *taxdomain.ItemTaxTemplate) error {
	err := r.db.WithContext(ctx).Exec(
		`INSERT INTO item_tax_templates (
			id, name, title, company, gst_rate, disabled, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tpl.ID,
		tpl.Name,
		tpl.Title,
		tpl.Company,
		tpl.GSTRate,
		tpl.Disabled,
		tpl.CreatedAt,
		tpl.UpdatedAt,
	).Error
	if db.IsDuplicateKeyErr(err) {
		return taxdomain.ErrDuplicateName
	}
	return err
}

func (r *repository) FindTemplateByID(ctx context.Context, id snowflake.ID) (*taxdomain.ItemTaxTemplate, error) {
	var tpl taxdomain.ItemTaxTemplate
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, name, title, company, gst_rate, disabled, created_at, updated_at
		 FROM item_tax_templates
		 WHERE id = ?`,
		id,
	).Scan(&tpl).Error
	if err != nil {
		return nil, err
	}
	if tpl.ID == 0 {
		return nil, nil
	}
	return &tpl, nil
}

func (r *repository) ListTemplates(ctx context.Context, filter taxdomain.ListRequest) ([]taxdomain.ItemTaxTemplate, error) {
	var items []taxdomain.ItemTaxTemplate
	stmt := r.db.WithContext(ctx).Model(&taxdomain.ItemTaxTemplate{})

	if filter.Name != "" {
		stmt = stmt.Where("name = ?", filter.Name)
	}
	if filter.Company != "" {
		stmt = stmt.Where("company = ?", filter.Company)
	}
	if filter.Disabled != nil {
		stmt = stmt.Where("disabled = ?", *filter.Disabled)
	}

	if err := stmt.Order("name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) UpdateTemplate(ctx context.Context, tpl *taxdomain.ItemTaxTemplate) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE item_tax_templates
		 SET title = ?, gst_rate = ?, disabled = ?, updated_at = ?
		 WHERE id = ?`,
		tpl.Title,
		tpl.GSTRate,
		tpl.Disabled,
		tpl.UpdatedAt,
		tpl.ID,
	).Error
}

func (r *repository) UpsertItem(ctx context.Context, item *taxdomain.Item) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "item_code"}},
			DoUpdates: clause.AssignmentColumns([]string{"item_name", "gst_hsn_code", "updated_at"}),
		}).
		Create(item).Error
}

func (r *repository) ReplaceItemTaxes(ctx context.Context, itemCode string, taxes []taxdomain.ItemTax) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM item_taxes WHERE item_code = ?`, itemCode).Error; err != nil {
			return err
		}
		if len(taxes) == 0 {
			return nil
		}
		now := time.Now().UTC()
		for i := range taxes {
			taxes[i].ItemCode = itemCode
			if taxes[i].CreatedAt.IsZero() {
				taxes[i].CreatedAt = now
			}
		}
		return tx.Create(&taxes).Error
	})
}
