package domain

import "time"

// LandingPage holds the marketing copy for the home page.
type LandingPage struct {
	ID               string    `json:"id"`
	Slug             string    `json:"slug"`
	Title            string    `json:"title"`
	HeroHeadline     string    `json:"hero_headline"`
	HeroSubheading   string    `json:"hero_subheading"`
	ProblemStatement string    `json:"problem_statement"`
	PrimaryCTAText   string    `json:"primary_cta_text"`
	PrimaryCTALink   string    `json:"primary_cta_link"`
	SecondaryCTAText string    `json:"secondary_cta_text"`
	SecondaryCTALink string    `json:"secondary_cta_link"`
	MetaTitle        string    `json:"meta_title"`
	MetaDescription  string    `json:"meta_description"`
	ModifiedAt       time.Time `json:"modified_at"`
}

// PricingTier is one card on the pricing section, ordered by DisplayOrder.
type PricingTier struct {
	ID           string `json:"id"`
	Slug         string `json:"slug"`
	TierName     string `json:"tier_name"`
	PriceDisplay string `json:"price_display"`
	Features     string `json:"features"`
	IsFeatured   bool   `json:"is_featured"`
	CTAText      string `json:"cta_text"`
	CTALink      string `json:"cta_link"`
	DisplayOrder int    `json:"display_order"`
}
