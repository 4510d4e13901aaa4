package service

import (
	"context"
	"strings"

	"github.com/smallbiznis/gsttally/internal/cache"
	taxdomain "github.com/smallbiznis/gsttally/internal/tax/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ResolverParams struct {
	fx.In

	Log        *zap.Logger
	Repository taxdomain.Repository
	Cache      taxdomain.RateCache `optional:"true"`
}

type resolver struct {
	log   *zap.Logger
	repo  taxdomain.Repository
	cache taxdomain.RateCache
}

func NewResolver(p ResolverParams) taxdomain.RateResolver {
	return &resolver{
		log:   p.Log.Named("tax.resolver"),
		repo:  p.Repository,
		cache: p.Cache,
	}
}

// Resolve reads the first template configured on the item and its gst_rate.
// Lookup errors are logged and resolve to a zero rate; they are not cached.
func (r *resolver) Resolve(ctx context.Context, itemCode, company string) taxdomain.Resolution {
	itemCode = strings.TrimSpace(itemCode)
	key := cache.RateKey(company, itemCode)
	if r.cache != nil {
		if res, ok := r.cache.Get(ctx, key); ok {
			return res
		}
	}

	templateName, err := r.repo.FirstTemplateName(ctx, itemCode)
	if err != nil {
		r.log.Error("failed to fetch item tax template",
			zap.String("item_code", itemCode),
			zap.Error(err),
		)
		return taxdomain.Resolution{Fallback: taxdomain.FallbackLookupError}
	}
	templateName = strings.TrimSpace(templateName)
	if templateName == "" {
		return r.remember(ctx, key, taxdomain.Resolution{Fallback: taxdomain.FallbackNoTemplate})
	}

	tpl, err := r.repo.FindTemplateByName(ctx, templateName)
	if err != nil {
		r.log.Error("failed to fetch gst rate from template",
			zap.String("template", templateName),
			zap.Error(err),
		)
		return taxdomain.Resolution{TemplateName: templateName, Fallback: taxdomain.FallbackLookupError}
	}
	if tpl == nil {
		r.log.Error("item tax template not found",
			zap.String("template", templateName),
			zap.String("item_code", itemCode),
		)
	}

	res := taxdomain.Resolution{TemplateName: templateName, Rate: tpl.Rate()}
	if res.Rate == 0 {
		res.Fallback = taxdomain.FallbackZeroRate
	}
	return r.remember(ctx, key, res)
}

func (r *resolver) remember(ctx context.Context, key string, res taxdomain.Resolution) taxdomain.Resolution {
	if r.cache != nil {
		r.cache.Set(ctx, key, res)
	}
	return res
}
