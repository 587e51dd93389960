package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/depositdefenders/accounts-service/internal/domain"
	apperrors "github.com/depositdefenders/accounts-service/pkg/util"
)

type fakeContentRepo struct {
	landing *domain.LandingPage
	tiers   []domain.PricingTier
	reads   int
}

func (r *fakeContentRepo) GetLandingPage(context.Context) (*domain.LandingPage, error) {
	r.reads++
	if r.landing == nil {
		return nil, pgx.ErrNoRows
	}
	copied := *r.landing
	return &copied, nil
}

func (r *fakeContentRepo) ListPricingTiers(context.Context) ([]domain.PricingTier, error) {
	r.reads++
	return r.tiers, nil
}

func TestLandingPage(t *testing.T) {
	t.Parallel()

	repo := &fakeContentRepo{landing: &domain.LandingPage{
		Slug:         "home",
		Title:        "Deposit Defenders",
		HeroHeadline: "Get your deposit back",
	}}
	svc := NewContentService(repo, nil, 0, zap.NewNop())

	page, err := svc.LandingPage(context.Background())
	require.NoError(t, err)
	require.Equal(t, "home", page.Slug)
	require.Equal(t, "Get your deposit back", page.HeroHeadline)
}

func TestLandingPage_NotPublished(t *testing.T) {
	t.Parallel()

	svc := NewContentService(&fakeContentRepo{}, nil, 0, zap.NewNop())

	_, err := svc.LandingPage(context.Background())
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "NOT_FOUND", domainErr.Code)
	require.Equal(t, 404, domainErr.HTTPStatus)
}

func TestPricingTiers_Order(t *testing.T) {
	t.Parallel()

	repo := &fakeContentRepo{tiers: []domain.PricingTier{
		{Slug: "free", TierName: "Free", DisplayOrder: 0},
		{Slug: "pro", TierName: "Pro", DisplayOrder: 1, IsFeatured: true},
	}}
	svc := NewContentService(repo, nil, 0, zap.NewNop())

	tiers, err := svc.PricingTiers(context.Background())
	require.NoError(t, err)
	require.Len(t, tiers, 2)
	require.Equal(t, "free", tiers[0].Slug)
	require.True(t, tiers[1].IsFeatured)
}

func TestPricingTiers_EmptyListIsValid(t *testing.T) {
	t.Parallel()

	svc := NewContentService(&fakeContentRepo{}, nil, 0, zap.NewNop())

	tiers, err := svc.PricingTiers(context.Background())
	require.NoError(t, err)
	require.NotNil(t, tiers)
	require.Empty(t, tiers)
}
