package templates

// The built-in templates, in detection priority order. Directory never
// auto-detects and Generic always does, so Generic stays last.

func wordpress() *Template {
	return newTemplate(Config{
		ID:          "wordpress",
		Name:        "WordPress",
		Description: "WordPress blog and content scraper",
		PlatformSignals: []string{
			"wp-content", "wp-includes", "wordpress", "wp-json", "wp-admin",
		},
		Selectors: SelectorSet{
			BlogLanding: []string{
				"article.post", ".blog-post", ".entry", ".hentry", ".type-post",
			},
			ArticleList: []string{
				".post-listing", ".blog-listing", "#main article", ".posts-container",
			},
			ArticleLink: []string{
				"a.entry-title", "h2.entry-title a", ".post-title a",
				`article a[rel="bookmark"]`, ".entry-header a",
			},
			ArticleTitle: []string{
				"h1.entry-title", ".post-title", "h1.wp-block-post-title", ".entry-title",
			},
			ArticleDate: []string{
				"time.entry-date", ".post-date", "time[datetime]", ".published", ".entry-date",
			},
			ArticleAuthor: []string{
				".author", ".entry-author", ".vcard .fn", `a[rel="author"]`, ".byline .author",
			},
			ArticleContent: []string{
				".entry-content", ".post-content", ".the-content", "article .content",
			},
			Navigation: []string{
				".nav-links", ".pagination", ".wp-pagenavi", ".page-numbers",
			},
		},
		Pagination: Pagination{
			Type:         "numbered",
			NextSelector: "a.next.page-numbers",
			PageParam:    "page",
			MaxPages:     50,
		},
		BlogPathPatterns:     []string{`/blog/?`, `/category/`, `/tag/`, `/insights/?`, `/news/?`},
		ArticlePathPatterns:  []string{`/\d{4}/\d{2}/`, `/blog/[\w-]+/?$`},
		TeamPathPatterns:     []string{`/about`, `/team`},
		ResourcePathPatterns: []string{`/resources`, `/downloads`},
		RateLimitMS:          1000,
		MaxConcurrentPages:   3,
	}, detectBySignals)
}

func hubspot() *Template {
	return newTemplate(Config{
		ID:          "hubspot",
		Name:        "HubSpot",
		Description: "HubSpot CMS blog and resource center scraper",
		PlatformSignals: []string{
			"js.hs-scripts.com", "hs-script-loader", "hubspot", ".hs-", "hbspt",
		},
		Selectors: SelectorSet{
			BlogLanding: []string{".blog-listing", ".hs-blog-listing", ".post-listing"},
			ArticleList: []string{".blog-listing-wrapper", ".content-wrapper"},
			ArticleLink: []string{
				".blog-listing a", ".hs-blog-post a", ".post-listing-wrapper a", "a.blog-post-link",
			},
			ArticleTitle:   []string{"h1", ".blog-post-title", ".hs-blog-post-title"},
			ArticleDate:    []string{".post-date", ".blog-post-date", "time[datetime]"},
			ArticleAuthor:  []string{".author-name", ".blog-post-author", ".hs-author-name"},
			ArticleContent: []string{".blog-post-body", ".post-body", ".hs-blog-post-body"},
			TeamMembers:    []string{".team-member", ".staff-card"},
			ContactInfo:    []string{".contact-form", ".hs-form"},
			Navigation:     []string{".blog-pagination", ".pagination"},
		},
		Pagination: Pagination{
			Type:         "numbered",
			NextSelector: ".blog-pagination a.next",
			MaxPages:     30,
		},
		BlogPathPatterns:     []string{`/blog/?`, `/resources/?`, `/knowledge/?`},
		ArticlePathPatterns:  []string{`/blog/`},
		TeamPathPatterns:     []string{`/about`, `/team`, `/company`},
		ResourcePathPatterns: []string{`/resources`, `/library`, `/ebooks`},
		RateLimitMS:          1500,
		MaxConcurrentPages:   2,
	}, detectBySignals)
}

func webflow() *Template {
	return newTemplate(Config{
		ID:              "webflow",
		Name:            "Webflow",
		Description:     "Webflow marketing site and blog scraper",
		PlatformSignals: []string{"webflow.com", "wf-page", "wf-section", "w-dyn-list"},
		Selectors: SelectorSet{
			BlogLanding:    []string{".w-dyn-list", ".collection-list"},
			ArticleList:    []string{".w-dyn-items", ".collection-list-wrapper"},
			ArticleLink:    []string{".w-dyn-item a", ".collection-item a", ".blog-link"},
			ArticleTitle:   []string{"h1", ".blog-title", ".post-title"},
			ArticleDate:    []string{".post-date", ".blog-date", "time"},
			ArticleAuthor:  []string{".author", ".post-author"},
			ArticleContent: []string{".blog-content", ".post-body", ".rich-text-block"},
			TeamMembers:    []string{".team-member", ".w-dyn-item"},
			ContactInfo:    []string{".contact-form", "form"},
			Navigation:     []string{".w-pagination", ".pagination"},
		},
		Pagination: Pagination{
			Type:         "next_link",
			NextSelector: ".w-pagination-next",
			MaxPages:     20,
		},
		BlogPathPatterns:     []string{`/blog/?`, `/posts/?`, `/articles/?`},
		ArticlePathPatterns:  []string{`/blog/`, `/posts/`},
		TeamPathPatterns:     []string{`/about`, `/team`},
		ResourcePathPatterns: []string{`/resources`, `/library`},
		RateLimitMS:          1000,
		MaxConcurrentPages:   3,
	}, detectBySignals)
}

func directory() *Template {
	return newTemplate(Config{
		ID:          "directory",
		Name:        "Directory",
		Description: "Directory and listing page scraper",
		Selectors: SelectorSet{
			ArticleList:  []string{".directory-list", ".listing", "table", ".results", "ul.list"},
			ArticleLink:  []string{".listing a", ".directory-item a", "table a", ".result a"},
			ArticleTitle: []string{"h1", ".page-title"},
			TeamMembers:  []string{".person", ".profile", ".member", ".team-member", "tr"},
			ContactInfo:  []string{".contact", ".email", ".phone"},
			Navigation:   []string{".pagination", ".pager", "nav.pages"},
		},
		Pagination: Pagination{
			Type:         "numbered",
			NextSelector: `.next, a[rel="next"]`,
			PageParam:    "page",
			MaxPages:     100,
		},
		TeamPathPatterns:   []string{`/directory`, `/people`, `/members`},
		RateLimitMS:        2000,
		MaxConcurrentPages: 2,
	}, detectNever)
}

func generic() *Template {
	return newTemplate(Config{
		ID:          "generic",
		Name:        "Generic",
		Description: "Generic fallback scraper for unrecognized platforms",
		Selectors: SelectorSet{
			BlogLanding:    []string{"article", ".post", ".blog-post", ".entry"},
			ArticleList:    []string{"main", "#content", ".content-area"},
			ArticleLink:    []string{"article a", "h2 a", "h3 a", ".post a", ".entry a"},
			ArticleTitle:   []string{"h1", "title", ".entry-title", ".post-title"},
			ArticleDate:    []string{"time[datetime]", ".date", ".post-date", ".published"},
			ArticleAuthor:  []string{".author", ".byline", `[rel="author"]`},
			ArticleContent: []string{"article", ".content", ".entry-content", "main"},
			TeamMembers:    []string{".team-member", ".staff", ".person", ".bio"},
			ContactInfo:    []string{".contact", "address", ".vcard"},
			Navigation:     []string{".pagination", ".nav-links", "nav"},
		},
		Pagination: Pagination{
			Type:         "next_link",
			NextSelector: `a[rel="next"], .next, .pagination a:last-child`,
			PageParam:    "page",
			MaxPages:     20,
		},
		BlogPathPatterns:     []string{`/blog/?`, `/news/?`, `/articles/?`, `/insights/?`, `/posts/?`},
		ArticlePathPatterns:  []string{`/blog/`, `/news/`, `/articles/`},
		TeamPathPatterns:     []string{`/about`, `/team`, `/people`, `/leadership`},
		ResourcePathPatterns: []string{`/resources`, `/whitepapers`, `/case-studies`, `/webinars`},
		RateLimitMS:          1500,
		MaxConcurrentPages:   2,
	}, detectAlways)
}
