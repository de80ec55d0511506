package parser

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/lakeb2b/scraper/models"
)

var (
	emailPattern    = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePattern    = regexp.MustCompile(`(?:\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	linkedinPattern = regexp.MustCompile(`https?://(?:www\.)?linkedin\.com/in/[\w-]+`)
)

// genericEmailPrefixes are role mailboxes that never identify a person.
var genericEmailPrefixes = []string{
	"info@", "support@", "sales@", "help@", "admin@", "contact@",
	"hello@", "noreply@", "no-reply@", "webmaster@", "privacy@", "legal@",
}

// teamCardSelectors are common team page card patterns, tried in order; the
// first selector that matches any cards wins.
var teamCardSelectors = []string{
	".team-member",
	".staff-card",
	".person",
	".bio-card",
	".team-card",
	".leadership-card",
	".member-card",
	".about-team .card",
}

// Contacts extracts people from a page using three strategies: JSON-LD
// Person entries, team page cards, and (only when both come up empty) raw
// email/LinkedIn patterns in the page text. Results are merged by email or
// full name, with non-empty fields winning.
func Contacts(p *Page) []models.ContactMetadata {
	var people []models.ContactMetadata
	people = append(people, contactsFromJSONLD(p.doc)...)
	people = append(people, contactsFromTeamCards(p.doc)...)
	if len(people) == 0 {
		people = append(people, contactsFromText(p.doc)...)
	}
	return dedupeContacts(people)
}

// jsonLDPerson is the subset of schema.org Person we consume.
type jsonLDPerson struct {
	Type     string `json:"@type"`
	Name     string `json:"name"`
	JobTitle string `json:"jobTitle"`
	Email    string `json:"email"`
	SameAs   string `json:"sameAs"`
}

func contactsFromJSONLD(doc *goquery.Document) []models.ContactMetadata {
	var people []models.ContactMetadata
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}
		var items []jsonLDPerson
		if strings.HasPrefix(raw, "[") {
			if err := json.Unmarshal([]byte(raw), &items); err != nil {
				return
			}
		} else {
			var one jsonLDPerson
			if err := json.Unmarshal([]byte(raw), &one); err != nil {
				return
			}
			items = []jsonLDPerson{one}
		}
		for _, item := range items {
			if item.Type != "Person" {
				continue
			}
			first, last := splitName(item.Name)
			people = append(people, models.ContactMetadata{
				FirstName:   first,
				LastName:    last,
				JobTitle:    item.JobTitle,
				Email:       item.Email,
				LinkedInURL: item.SameAs,
				Source:      "json_ld",
			})
		}
	})
	return people
}

func contactsFromTeamCards(doc *goquery.Document) []models.ContactMetadata {
	var people []models.ContactMetadata
	for _, selector := range teamCardSelectors {
		cards := doc.Find(selector)
		if cards.Length() == 0 {
			continue
		}
		cards.Each(func(_ int, card *goquery.Selection) {
			var name string
			for _, nameSel := range []string{"h3", "h4", ".name", ".member-name", "strong"} {
				if t := strings.TrimSpace(card.Find(nameSel).First().Text()); t != "" {
					name = t
					break
				}
			}
			if name == "" {
				return
			}

			var title string
			for _, titleSel := range []string{".title", ".position", ".role", ".job-title", "p"} {
				if t := strings.TrimSpace(card.Find(titleSel).First().Text()); t != "" {
					title = t
					break
				}
			}

			var linkedin string
			card.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
				href, _ := a.Attr("href")
				if strings.Contains(href, "linkedin.com/in/") {
					linkedin = href
					return false
				}
				return true
			})

			first, last := splitName(name)
			people = append(people, models.ContactMetadata{
				FirstName:   first,
				LastName:    last,
				JobTitle:    title,
				LinkedInURL: linkedin,
				Source:      "team_page",
			})
		})
		if len(people) > 0 {
			break
		}
	}
	return people
}

func contactsFromText(doc *goquery.Document) []models.ContactMetadata {
	text := doc.Find("body").Text()
	var people []models.ContactMetadata

	for _, email := range emailPattern.FindAllString(text, -1) {
		if isGenericEmail(email) {
			continue
		}
		people = append(people, models.ContactMetadata{
			Email:    email,
			Business: IsBusinessEmail(email),
			Source:   "email_pattern",
		})
	}
	for _, linkedin := range linkedinPattern.FindAllString(text, -1) {
		people = append(people, models.ContactMetadata{
			LinkedInURL: linkedin,
			Source:      "linkedin_pattern",
		})
	}
	if phone := phonePattern.FindString(text); phone != "" && len(people) > 0 {
		// Page-level phone only makes sense attached to a found contact.
		people[0].Phone = strings.TrimSpace(phone)
	}
	return people
}

func isGenericEmail(email string) bool {
	lower := strings.ToLower(email)
	for _, prefix := range genericEmailPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

func splitName(full string) (first, last string) {
	parts := strings.SplitN(strings.TrimSpace(full), " ", 2)
	if len(parts) == 0 || parts[0] == "" {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

// dedupeContacts merges entries that share an email or full name; later
// fields fill gaps in the first-seen entry but never overwrite.
func dedupeContacts(people []models.ContactMetadata) []models.ContactMetadata {
	seenEmails := map[string]int{}
	seenNames := map[string]int{}
	var result []models.ContactMetadata

	for _, person := range people {
		email := strings.ToLower(person.Email)
		name := strings.ToLower(strings.TrimSpace(person.FirstName + " " + person.LastName))

		idx := -1
		if email != "" {
			if i, ok := seenEmails[email]; ok {
				idx = i
			}
		}
		if idx < 0 && name != "" {
			if i, ok := seenNames[name]; ok {
				idx = i
			}
		}

		if idx >= 0 {
			mergeContact(&result[idx], person)
			continue
		}
		result = append(result, person)
		idx = len(result) - 1
		if email != "" {
			seenEmails[email] = idx
		}
		if name != "" {
			seenNames[name] = idx
		}
	}
	return result
}

func mergeContact(dst *models.ContactMetadata, src models.ContactMetadata) {
	if dst.FirstName == "" {
		dst.FirstName = src.FirstName
	}
	if dst.LastName == "" {
		dst.LastName = src.LastName
	}
	if dst.JobTitle == "" {
		dst.JobTitle = src.JobTitle
	}
	if dst.Email == "" {
		dst.Email = src.Email
		dst.Business = src.Business
	}
	if dst.Phone == "" {
		dst.Phone = src.Phone
	}
	if dst.LinkedInURL == "" {
		dst.LinkedInURL = src.LinkedInURL
	}
}
