package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	jurisdictiondomain "github.com/smallbiznis/gsttally/internal/jurisdiction/domain"
	"github.com/smallbiznis/gsttally/internal/jurisdiction/repository"
	sidomain "github.com/smallbiznis/gsttally/internal/salesinvoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const companyGSTIN = "07AAACK9500A1Z5"

func setupClassifier(t *testing.T) jurisdictiondomain.Classifier {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&jurisdictiondomain.Company{}))

	repo := repository.NewRepository(db)
	require.NoError(t, repo.Upsert(context.Background(), &jurisdictiondomain.Company{ID: 1, Name: "Kaynes", GSTIN: companyGSTIN}))
	require.NoError(t, repo.Upsert(context.Background(), &jurisdictiondomain.Company{ID: 2, Name: "Unregistered"}))

	return NewClassifier(ClassifierParams{Log: zap.NewNop(), Repo: repo})
}

func TestClassify(t *testing.T) {
	classifier := setupClassifier(t)

	tests := []struct {
		name string
		doc  *sidomain.SalesInvoice
		want jurisdictiondomain.Classification
	}{
		{
			name: "same state",
			doc:  &sidomain.SalesInvoice{Company: "Kaynes", CustomerGSTIN: "07AAEPM0123C1Z1"},
			want: jurisdictiondomain.IntraState,
		},
		{
			name: "different state",
			doc:  &sidomain.SalesInvoice{Company: "Kaynes", CustomerGSTIN: "27AAEPM0123C1Z5"},
			want: jurisdictiondomain.InterState,
		},
		{
			name: "billing address overrides customer",
			doc:  &sidomain.SalesInvoice{Company: "Kaynes", CustomerGSTIN: "27AAEPM0123C1Z5", BillingAddressGSTIN: "07AAEPM0123C1Z1"},
			want: jurisdictiondomain.IntraState,
		},
		{
			name: "blank recipient",
			doc:  &sidomain.SalesInvoice{Company: "Kaynes"},
			want: jurisdictiondomain.InterState,
		},
		{
			name: "company without gstin",
			doc:  &sidomain.SalesInvoice{Company: "Unregistered", CustomerGSTIN: "07AAEPM0123C1Z1"},
			want: jurisdictiondomain.InterState,
		},
		{
			name: "unknown company",
			doc:  &sidomain.SalesInvoice{Company: "Nobody", CustomerGSTIN: "07AAEPM0123C1Z1"},
			want: jurisdictiondomain.InterState,
		},
		{
			name: "nil document",
			doc:  nil,
			want: jurisdictiondomain.InterState,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classifier.Classify(context.Background(), tc.doc))
		})
	}
}

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) FindByName(ctx context.Context, name string) (*jurisdictiondomain.Company, error) {
	args := m.Called(ctx, name)
	company, _ := args.Get(0).(*jurisdictiondomain.Company)
	return company, args.Error(1)
}

func (m *mockRepository) Upsert(ctx context.Context, company *jurisdictiondomain.Company) error {
	return m.Called(ctx, company).Error(0)
}

func TestClassifyLookupErrorFallsBackToInterState(t *testing.T) {
	repo := &mockRepository{}
	repo.On("FindByName", mock.Anything, "Kaynes").Return(nil, errors.New("connection reset"))

	classifier := NewClassifier(ClassifierParams{Log: zap.NewNop(), Repo: repo})
	got := classifier.Classify(context.Background(), &sidomain.SalesInvoice{Company: "Kaynes", CustomerGSTIN: "07AAEPM0123C1Z1"})

	assert.Equal(t, jurisdictiondomain.InterState, got)
	repo.AssertExpectations(t)
}

func TestUpsertUpdatesGSTIN(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&jurisdictiondomain.Company{}))

	repo := repository.NewRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.Upsert(ctx, &jurisdictiondomain.Company{ID: 10, Name: "Acme", GSTIN: "29AAAAA0000A1Z5"}))
	require.NoError(t, repo.Upsert(ctx, &jurisdictiondomain.Company{ID: 11, Name: "Acme", GSTIN: "33AAAAA0000A1Z5"}))

	company, err := repo.FindByName(ctx, "Acme")
	require.NoError(t, err)
	require.NotNil(t, company)
	assert.Equal(t, "33AAAAA0000A1Z5", company.GSTIN)
	assert.EqualValues(t, 10, company.ID)
}
