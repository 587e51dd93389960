package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/depositdefenders/accounts-service/internal/domain"
)

// ContentRepository reads the CMS-style marketing content.
type ContentRepository interface {
	GetLandingPage(ctx context.Context) (*domain.LandingPage, error)
	ListPricingTiers(ctx context.Context) ([]domain.PricingTier, error)
}

type contentRepository struct {
	pool *pgxpool.Pool
}

// NewContentRepository returns a Postgres-backed implementation.
func NewContentRepository(pool *pgxpool.Pool) ContentRepository {
	return &contentRepository{pool: pool}
}

// GetLandingPage returns the first landing page record, pgx.ErrNoRows when
// none is published.
func (r *contentRepository) GetLandingPage(ctx context.Context) (*domain.LandingPage, error) {
	const query = `
        SELECT id, slug, title, hero_headline, hero_subheading, problem_statement,
               primary_cta_text, primary_cta_link, secondary_cta_text, secondary_cta_link,
               meta_title, meta_description, modified_at
        FROM landing_pages ORDER BY modified_at DESC LIMIT 1`

	var page domain.LandingPage
	if err := r.pool.QueryRow(ctx, query).Scan(
		&page.ID,
		&page.Slug,
		&page.Title,
		&page.HeroHeadline,
		&page.HeroSubheading,
		&page.ProblemStatement,
		&page.PrimaryCTAText,
		&page.PrimaryCTALink,
		&page.SecondaryCTAText,
		&page.SecondaryCTALink,
		&page.MetaTitle,
		&page.MetaDescription,
		&page.ModifiedAt,
	); err != nil {
		return nil, err
	}
	return &page, nil
}

// ListPricingTiers returns all tiers ordered for display.
func (r *contentRepository) ListPricingTiers(ctx context.Context) ([]domain.PricingTier, error) {
	const query = `
        SELECT id, slug, tier_name, price_display, features, is_featured, cta_text, cta_link, display_order
        FROM pricing_tiers ORDER BY display_order ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tiers []domain.PricingTier
	for rows.Next() {
		var tier domain.PricingTier
		if err := rows.Scan(
			&tier.ID,
			&tier.Slug,
			&tier.TierName,
			&tier.PriceDisplay,
			&tier.Features,
			&tier.IsFeatured,
			&tier.CTAText,
			&tier.CTALink,
			&tier.DisplayOrder,
		); err != nil {
			return nil, err
		}
		tiers = append(tiers, tier)
	}
	return tiers, rows.Err()
}
