package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, html string) *Page {
	t.Helper()
	p, err := Parse(html, "https://example.com/team")
	require.NoError(t, err)
	return p
}

func TestContactsFromJSONLD(t *testing.T) {
	html := `<html><body>
	<script type="application/ld+json">
	{"@type": "Person", "name": "Jane Doe", "jobTitle": "CTO", "email": "jane@acme.com"}
	</script>
	</body></html>`

	people := Contacts(mustParse(t, html))
	require.Len(t, people, 1)
	assert.Equal(t, "Jane", people[0].FirstName)
	assert.Equal(t, "Doe", people[0].LastName)
	assert.Equal(t, "CTO", people[0].JobTitle)
	assert.Equal(t, "jane@acme.com", people[0].Email)
	assert.Equal(t, "json_ld", people[0].Source)
}

func TestContactsFromTeamCards(t *testing.T) {
	html := `<html><body>
	<div class="team-member">
		<h3>John Smith</h3>
		<p class="title">VP Engineering</p>
		<a href="https://linkedin.com/in/john-smith">LinkedIn</a>
	</div>
	<div class="team-member">
		<h3>Mary Major</h3>
		<p class="title">Head of Sales</p>
	</div>
	</body></html>`

	people := Contacts(mustParse(t, html))
	require.Len(t, people, 2)
	assert.Equal(t, "John", people[0].FirstName)
	assert.Equal(t, "Smith", people[0].LastName)
	assert.Equal(t, "VP Engineering", people[0].JobTitle)
	assert.Equal(t, "https://linkedin.com/in/john-smith", people[0].LinkedInURL)
	assert.Equal(t, "team_page", people[0].Source)
	assert.Equal(t, "Mary Major", people[1].FullName())
}

func TestContactsFromTextFallback(t *testing.T) {
	// No structured data, no team cards: fall back to pattern extraction.
	html := `<html><body>
	<p>Reach our founder at jane.doe@acme.com or the desk at info@acme.com.</p>
	</body></html>`

	people := Contacts(mustParse(t, html))
	require.Len(t, people, 1, "generic role mailboxes must be filtered")
	assert.Equal(t, "jane.doe@acme.com", people[0].Email)
	assert.True(t, people[0].Business)
	assert.Equal(t, "email_pattern", people[0].Source)
}

func TestContactsTextFallbackSkippedWhenCardsExist(t *testing.T) {
	html := `<html><body>
	<div class="person"><h3>Ann Ode</h3></div>
	<p>unrelated@elsewhere.com</p>
	</body></html>`

	people := Contacts(mustParse(t, html))
	require.Len(t, people, 1)
	assert.Equal(t, "team_page", people[0].Source)
}

func TestContactsDedupeMergesByName(t *testing.T) {
	html := `<html><body>
	<script type="application/ld+json">
	{"@type": "Person", "name": "Jane Doe", "email": "jane@acme.com"}
	</script>
	<div class="team-member">
		<h3>Jane Doe</h3>
		<p class="title">CTO</p>
	</div>
	</body></html>`

	people := Contacts(mustParse(t, html))
	require.Len(t, people, 1)
	// Merged: email from JSON-LD, title filled in from the card.
	assert.Equal(t, "jane@acme.com", people[0].Email)
	assert.Equal(t, "CTO", people[0].JobTitle)
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("jane@acme.com"))
	assert.True(t, IsValidEmail("j.doe+tag@sub.acme.co.uk"))
	assert.False(t, IsValidEmail(""))
	assert.False(t, IsValidEmail("not-an-email"))
	assert.False(t, IsValidEmail("jane@mailinator.com"), "disposable domain")
}

func TestIsBusinessEmail(t *testing.T) {
	assert.True(t, IsBusinessEmail("jane@acme.com"))
	assert.False(t, IsBusinessEmail("jane@gmail.com"))
	assert.False(t, IsBusinessEmail("jane@yopmail.com"))
}
