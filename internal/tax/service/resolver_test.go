package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/gsttally/internal/cache"
	taxdomain "github.com/smallbiznis/gsttally/internal/tax/domain"
	"github.com/smallbiznis/gsttally/internal/tax/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupRepo(t *testing.T) taxdomain.Repository {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&taxdomain.ItemTaxTemplate{},
		&taxdomain.Item{},
		&taxdomain.ItemTax{},
	))
	return repository.NewRepository(db)
}

func float64Ptr(v float64) *float64 { return &v }

func seedTemplate(t *testing.T, repo taxdomain.Repository, id int64, name string, rate *float64) {
	t.Helper()
	require.NoError(t, repo.CreateTemplate(context.Background(), &taxdomain.ItemTaxTemplate{
		ID:      snowflakeID(id),
		Name:    name,
		Title:   name,
		Company: "Kaynes",
		GSTRate: rate,
	}))
}

func TestResolveFirstTemplate(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	seedTemplate(t, repo, 1, "GST-18%-TEST", float64Ptr(18))
	seedTemplate(t, repo, 2, "GST-5%-TEST", float64Ptr(5))
	require.NoError(t, repo.ReplaceItemTaxes(ctx, "GST-ITEM-18", []taxdomain.ItemTax{
		{ID: snowflakeID(10), Idx: 2, ItemTaxTemplate: "GST-5%-TEST"},
		{ID: snowflakeID(11), Idx: 1, ItemTaxTemplate: "GST-18%-TEST"},
	}))

	r := NewResolver(ResolverParams{Log: zap.NewNop(), Repository: repo})
	res := r.Resolve(ctx, "GST-ITEM-18", "Kaynes")

	assert.Equal(t, "GST-18%-TEST", res.TemplateName)
	assert.Equal(t, 18.0, res.Rate)
	assert.Equal(t, taxdomain.FallbackNone, res.Fallback)
}

func TestResolveFallbacks(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	seedTemplate(t, repo, 1, "GST-UNSET", nil)
	seedTemplate(t, repo, 2, "GST-0%", float64Ptr(0))
	require.NoError(t, repo.ReplaceItemTaxes(ctx, "UNSET-ITEM", []taxdomain.ItemTax{{ID: snowflakeID(10), ItemTaxTemplate: "GST-UNSET"}}))
	require.NoError(t, repo.ReplaceItemTaxes(ctx, "ZERO-ITEM", []taxdomain.ItemTax{{ID: snowflakeID(11), ItemTaxTemplate: "GST-0%"}}))
	require.NoError(t, repo.ReplaceItemTaxes(ctx, "DANGLING-ITEM", []taxdomain.ItemTax{{ID: snowflakeID(12), ItemTaxTemplate: "MISSING"}}))

	r := NewResolver(ResolverParams{Log: zap.NewNop(), Repository: repo})

	tests := []struct {
		itemCode string
		template string
		fallback taxdomain.FallbackReason
	}{
		{itemCode: "NO-TEMPLATE", template: "", fallback: taxdomain.FallbackNoTemplate},
		{itemCode: "UNSET-ITEM", template: "GST-UNSET", fallback: taxdomain.FallbackZeroRate},
		{itemCode: "ZERO-ITEM", template: "GST-0%", fallback: taxdomain.FallbackZeroRate},
		{itemCode: "DANGLING-ITEM", template: "MISSING", fallback: taxdomain.FallbackZeroRate},
	}

	for _, tc := range tests {
		t.Run(tc.itemCode, func(t *testing.T) {
			res := r.Resolve(ctx, tc.itemCode, "Kaynes")
			assert.Equal(t, 0.0, res.Rate)
			assert.Equal(t, tc.template, res.TemplateName)
			assert.Equal(t, tc.fallback, res.Fallback)
		})
	}
}

type mockRepository struct {
	mock.Mock
	taxdomain.Repository
}

func (m *mockRepository) FirstTemplateName(ctx context.Context, itemCode string) (string, error) {
	args := m.Called(ctx, itemCode)
	return args.String(0), args.Error(1)
}

func (m *mockRepository) FindTemplateByName(ctx context.Context, name string) (*taxdomain.ItemTaxTemplate, error) {
	args := m.Called(ctx, name)
	tpl, _ := args.Get(0).(*taxdomain.ItemTaxTemplate)
	return tpl, args.Error(1)
}

func TestResolveLookupErrorIsNotCached(t *testing.T) {
	repo := &mockRepository{}
	repo.On("FirstTemplateName", mock.Anything, "GST-ITEM-18").Return("", errors.New("db down")).Once()
	repo.On("FirstTemplateName", mock.Anything, "GST-ITEM-18").Return("GST-18%-TEST", nil).Once()
	repo.On("FindTemplateByName", mock.Anything, "GST-18%-TEST").
		Return(&taxdomain.ItemTaxTemplate{ID: 1, Name: "GST-18%-TEST", GSTRate: float64Ptr(18)}, nil).Once()

	r := NewResolver(ResolverParams{Log: zap.NewNop(), Repository: repo, Cache: cache.NewMemoryRateCache(0)})
	ctx := context.Background()

	first := r.Resolve(ctx, "GST-ITEM-18", "Kaynes")
	assert.Equal(t, taxdomain.FallbackLookupError, first.Fallback)
	assert.Equal(t, 0.0, first.Rate)

	second := r.Resolve(ctx, "GST-ITEM-18", "Kaynes")
	assert.Equal(t, 18.0, second.Rate)

	third := r.Resolve(ctx, "GST-ITEM-18", "Kaynes")
	assert.Equal(t, second, third)

	repo.AssertExpectations(t)
}

func TestResolveTemplateLookupError(t *testing.T) {
	repo := &mockRepository{}
	repo.On("FirstTemplateName", mock.Anything, "X").Return("TPL", nil)
	repo.On("FindTemplateByName", mock.Anything, "TPL").Return(nil, errors.New("timeout"))

	r := NewResolver(ResolverParams{Log: zap.NewNop(), Repository: repo})
	res := r.Resolve(context.Background(), "X", "Kaynes")

	assert.Equal(t, "TPL", res.TemplateName)
	assert.Equal(t, taxdomain.FallbackLookupError, res.Fallback)
	assert.Equal(t, 0.0, res.Rate)
}
