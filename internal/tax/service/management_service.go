package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/gsttally/internal/clock"
	taxdomain "github.com/smallbiznis/gsttally/internal/tax/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParams struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  taxdomain.Repository
	Cache taxdomain.RateCache `optional:"true"`
	Clock clock.Clock         `optional:"true"`
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	repo  taxdomain.Repository
	cache taxdomain.RateCache
	clock clock.Clock
}

func NewService(p ServiceParams) taxdomain.Service {
	clk := p.Clock
	if clk == nil {
		clk = clock.System()
	}
	return &Service{
		log:   p.Log.Named("tax.service"),
		genID: p.GenID,
		repo:  p.Repo,
		cache: p.Cache,
		clock: clk,
	}
}

func (s *Service) List(ctx context.Context, req taxdomain.ListRequest) ([]taxdomain.Response, error) {
	filter := taxdomain.ListRequest{
		Name:     strings.TrimSpace(req.Name),
		Company:  strings.TrimSpace(req.Company),
		Disabled: req.Disabled,
	}

	items, err := s.repo.ListTemplates(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]taxdomain.Response, 0, len(items))
	for _, item := range items {
		resp = append(resp, toResponse(&item))
	}
	return resp, nil
}

func (s *Service) Create(ctx context.Context, req taxdomain.CreateRequest) (*taxdomain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, taxdomain.ErrInvalidName
	}

	disabled := false
	if req.Disabled != nil {
		disabled = *req.Disabled
	}

	now := s.clock.Now()
	record := &taxdomain.ItemTaxTemplate{
		ID:        s.genID.Generate(),
		Name:      name,
		Title:     strings.TrimSpace(req.Title),
		Company:   strings.TrimSpace(req.Company),
		GSTRate:   req.GSTRate,
		Disabled:  disabled,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if record.Title == "" {
		record.Title = name
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.CreateTemplate(ctx, record); err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	s.log.Info("item tax template created",
		zap.String("template", record.Name),
		zap.String("company", record.Company),
		zap.Float64("gst_rate", record.Rate()),
	)

	resp := toResponse(record)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req taxdomain.UpdateRequest) (*taxdomain.Response, error) {
	item, err := s.find(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, taxdomain.ErrInvalidName
		}
		item.Title = title
	}
	if req.GSTRate != nil {
		item.GSTRate = req.GSTRate
	}

	item.UpdatedAt = s.clock.Now()
	if err := item.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateTemplate(ctx, item); err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	resp := toResponse(item)
	return &resp, nil
}

func (s *Service) Disable(ctx context.Context, id string) (*taxdomain.Response, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	item.Disabled = true
	item.UpdatedAt = s.clock.Now()
	if err := s.repo.UpdateTemplate(ctx, item); err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	resp := toResponse(item)
	return &resp, nil
}

func (s *Service) find(ctx context.Context, id string) (*taxdomain.ItemTaxTemplate, error) {
	templateID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, taxdomain.ErrInvalidID
	}

	item, err := s.repo.FindTemplateByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, taxdomain.ErrNotFound
	}
	return item, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

func toResponse(tpl *taxdomain.ItemTaxTemplate) taxdomain.Response {
	return taxdomain.Response{
		ID:        tpl.ID.String(),
		Name:      tpl.Name,
		Title:     tpl.Title,
		Company:   tpl.Company,
		GSTRate:   tpl.GSTRate,
		Disabled:  tpl.Disabled,
		CreatedAt: tpl.CreatedAt,
		UpdatedAt: tpl.UpdatedAt,
	}
}
