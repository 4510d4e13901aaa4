package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	FirstTemplateName(ctx context.Context, itemCode string) (string, error)
	FindTemplateByName(ctx context.Context, name string) (*ItemTaxTemplate, error)

	CreateTemplate(ctx context.Context, tpl *ItemTaxTemplate) error
	FindTemplateByID(ctx context.Context, id snowflake.ID) (*ItemTaxTemplate, error)
	ListTemplates(ctx context.Context, filter ListRequest) ([]ItemTaxTemplate, error)
	UpdateTemplate(ctx context.Context, tpl *ItemTaxTemplate) error

	UpsertItem(ctx context.Context, item *Item) error
	ReplaceItemTaxes(ctx context.Context, itemCode string, taxes []ItemTax) error
}
