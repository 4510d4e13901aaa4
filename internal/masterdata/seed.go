package masterdata

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	jurisdictiondomain "github.com/smallbiznis/gsttally/internal/jurisdiction/domain"
	jurisdictionrepo "github.com/smallbiznis/gsttally/internal/jurisdiction/repository"
	taxdomain "github.com/smallbiznis/gsttally/internal/tax/domain"
	taxrepo "github.com/smallbiznis/gsttally/internal/tax/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Summary counts the records written by Seed.
type Summary struct {
	Companies        int
	TemplatesCreated int
	TemplatesUpdated int
	Items            int
}

// Seed writes the file into the database in one transaction. Running it twice
// with the same file leaves the data unchanged.
func Seed(ctx context.Context, db *gorm.DB, node *snowflake.Node, f *File, log *zap.Logger) (Summary, error) {
	var summary Summary
	if db == nil {
		return summary, errors.New("seed database handle is required")
	}
	if node == nil {
		return summary, errors.New("seed id generator is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("masterdata")

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		summary = Summary{}
		companies := jurisdictionrepo.NewRepository(tx)
		taxes := taxrepo.NewRepository(tx)
		now := time.Now().UTC()

		for _, c := range f.Companies {
			if err := companies.Upsert(ctx, &jurisdictiondomain.Company{
				ID:        node.Generate(),
				Name:      c.Name,
				GSTIN:     c.GSTIN,
				CreatedAt: now,
				UpdatedAt: now,
			}); err != nil {
				return err
			}
			summary.Companies++
		}

		for _, t := range f.Templates {
			created, err := ensureTemplate(ctx, taxes, node, t, now)
			if err != nil {
				return err
			}
			if created {
				summary.TemplatesCreated++
			} else {
				summary.TemplatesUpdated++
			}
		}

		for _, it := range f.Items {
			if err := taxes.UpsertItem(ctx, &taxdomain.Item{
				ID:         node.Generate(),
				ItemCode:   it.ItemCode,
				ItemName:   it.ItemName,
				GSTHSNCode: it.GSTHSNCode,
				CreatedAt:  now,
				UpdatedAt:  now,
			}); err != nil {
				return err
			}
			links := make([]taxdomain.ItemTax, 0, len(it.Taxes))
			for idx, name := range it.Taxes {
				links = append(links, taxdomain.ItemTax{
					ID:              node.Generate(),
					Idx:             idx + 1,
					ItemTaxTemplate: name,
				})
			}
			if err := taxes.ReplaceItemTaxes(ctx, it.ItemCode, links); err != nil {
				return err
			}
			summary.Items++
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}

	log.Info("master data seeded",
		zap.Int("companies", summary.Companies),
		zap.Int("templates_created", summary.TemplatesCreated),
		zap.Int("templates_updated", summary.TemplatesUpdated),
		zap.Int("items", summary.Items),
	)
	return summary, nil
}

func ensureTemplate(ctx context.Context, repo taxdomain.Repository, node *snowflake.Node, t Template, now time.Time) (bool, error) {
	existing, err := repo.FindTemplateByName(ctx, t.Name)
	if err != nil {
		return false, err
	}
	if existing != nil {
		existing.Title = t.Title
		existing.GSTRate = t.GSTRate
		existing.Disabled = t.Disabled
		existing.UpdatedAt = now
		return false, repo.UpdateTemplate(ctx, existing)
	}

	tpl := &taxdomain.ItemTaxTemplate{
		ID:        node.Generate(),
		Name:      t.Name,
		Title:     t.Title,
		Company:   t.Company,
		GSTRate:   t.GSTRate,
		Disabled:  t.Disabled,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return true, repo.CreateTemplate(ctx, tpl)
}
