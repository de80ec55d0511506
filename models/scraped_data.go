package models

import (
	"time"

	"github.com/google/uuid"
)

// DataType is the semantic category of a scraped record.
type DataType string

const (
	DataTypeBlogURL   DataType = "blog_url"
	DataTypeArticle   DataType = "article"
	DataTypeContact   DataType = "contact"
	DataTypeTechStack DataType = "tech_stack"
	DataTypeResource  DataType = "resource"
	DataTypePricing   DataType = "pricing"
)

// ScrapedData is one persisted extraction. Metadata is the typed attribute
// bag for the record's data type (one of the *Metadata structs below,
// serialized as a plain map).
type ScrapedData struct {
	ID            uuid.UUID      `json:"id" badgerhold:"key"`
	JobID         uuid.UUID      `json:"job_id" badgerhold:"index"`
	Domain        string         `json:"domain" badgerhold:"index"`
	DataType      DataType       `json:"data_type"`
	URL           string         `json:"url,omitempty"`
	Title         string         `json:"title,omitempty"`
	PublishedDate string         `json:"published_date,omitempty"`
	Metadata      map[string]any `json:"metadata"`
	ScrapedAt     time.Time      `json:"scraped_at"`
}

// BlogURLMetadata describes a blog landing page and the article links on it.
type BlogURLMetadata struct {
	BlogLandingURL string   `json:"blog_landing_url"`
	ArticleURLs    []string `json:"article_urls"`
	TotalArticles  int      `json:"total_articles"`
}

// ArticleMetadata carries parsed article attributes. All fields optional.
type ArticleMetadata struct {
	Author          string   `json:"author,omitempty"`
	Categories      []string `json:"categories,omitempty"`
	WordCount       int      `json:"word_count"`
	Excerpt         string   `json:"excerpt,omitempty"`
	ContentMarkdown string   `json:"content_markdown,omitempty"`
}

// ContactMetadata is one person found on a team/contact page.
type ContactMetadata struct {
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	JobTitle    string `json:"job_title,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	LinkedInURL string `json:"linkedin_url,omitempty"`
	Business    bool   `json:"business_email,omitempty"`
	Source      string `json:"source"`
}

// FullName joins the name parts with a single space.
func (c *ContactMetadata) FullName() string {
	switch {
	case c.FirstName != "" && c.LastName != "":
		return c.FirstName + " " + c.LastName
	case c.FirstName != "":
		return c.FirstName
	default:
		return c.LastName
	}
}

// TechStackMetadata is the detected technology stack of a site.
type TechStackMetadata struct {
	Platform       string   `json:"platform,omitempty"`
	JSLibraries    []string `json:"js_libraries,omitempty"`
	Analytics      []string `json:"analytics,omitempty"`
	MarketingTools []string `json:"marketing_tools,omitempty"`
	Frameworks     []string `json:"frameworks,omitempty"`
	CDN            []string `json:"cdn,omitempty"`
}

// ResourceMetadata describes a downloadable/gated content asset.
type ResourceMetadata struct {
	ResourceType string `json:"resource_type"`
	Description  string `json:"description,omitempty"`
	Gated        bool   `json:"gated"`
	DownloadURL  string `json:"download_url,omitempty"`
}

// PricingMetadata is one plan extracted from a pricing page.
type PricingMetadata struct {
	PlanName     string   `json:"plan_name"`
	Price        string   `json:"price,omitempty"`
	BillingCycle string   `json:"billing_cycle"`
	Features     []string `json:"features,omitempty"`
	HasFreeTrial bool     `json:"has_free_trial"`
	CTAText      string   `json:"cta_text,omitempty"`
}
