package discovery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakeb2b/scraper/config"
	"github.com/lakeb2b/scraper/models"
	"github.com/lakeb2b/scraper/queue"
	"github.com/lakeb2b/scraper/retry"
	"github.com/lakeb2b/scraper/store"
)

type recordingQueue struct {
	scrapes     []queue.ScrapeTask
	discoveries []queue.DiscoveryTask
}

func (q *recordingQueue) EnqueueScrape(ctx context.Context, t queue.ScrapeTask) error {
	q.scrapes = append(q.scrapes, t)
	return nil
}

func (q *recordingQueue) EnqueueDiscovery(ctx context.Context, t queue.DiscoveryTask) error {
	q.discoveries = append(q.discoveries, t)
	return nil
}

func TestExtractUniqueDomainsKeepsHighestScore(t *testing.T) {
	results := []models.SearchResult{
		{Domain: "example.com", URL: "https://example.com/a", Score: 2.0},
		{Domain: "example.com", URL: "https://example.com/b", Score: 5.0},
		{Domain: "acme.io", URL: "https://acme.io", Score: 3.0},
	}

	unique := ExtractUniqueDomains(results, nil)
	require.Len(t, unique, 2)
	assert.Equal(t, "example.com", unique[0].Domain)
	assert.Equal(t, 5.0, unique[0].Score)
	assert.Equal(t, "https://example.com/b", unique[0].URL)
	assert.Equal(t, "acme.io", unique[1].Domain)
}

func TestExtractUniqueDomainsCollapsesSubdomains(t *testing.T) {
	results := []models.SearchResult{
		{Domain: "blog.example.com", URL: "https://blog.example.com/post", Score: 2.0},
		{Domain: "example.com", URL: "https://example.com", Score: 7.0},
		{URL: "https://docs.acme.io/guide", Score: 1.0},
	}

	unique := ExtractUniqueDomains(results, nil)
	require.Len(t, unique, 2)
	assert.Equal(t, "example.com", unique[0].Domain)
	assert.Equal(t, 7.0, unique[0].Score)
	assert.Equal(t, "acme.io", unique[1].Domain)
}

func TestExtractUniqueDomainsSkipSetAndURLFallback(t *testing.T) {
	results := []models.SearchResult{
		{URL: "https://www.example.com/page", Score: 1.0}, // domain derived from URL
		{Domain: "skipme.com", Score: 9.0},
	}

	unique := ExtractUniqueDomains(results, map[string]bool{"skipme.com": true})
	require.Len(t, unique, 1)
	assert.Equal(t, "example.com", unique[0].Domain)
}

func newTestProcessor(t *testing.T, search SearchFunc) (*Processor, *store.Manager, *recordingQueue) {
	t.Helper()
	m, err := store.Open(config.StoreConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	q := &recordingQueue{}
	p := NewProcessor(m, q, search, 7, 20)
	p.Retry = retry.Policy{MaxAttempts: 1}
	return p, m, q
}

func createDiscoveryJob(t *testing.T, m *store.Manager) *models.DiscoveryJob {
	t.Helper()
	in := &models.DiscoveryJobInput{
		Query:     "b2b data platforms",
		DataTypes: []models.DataType{models.DataTypeContact},
	}
	in.Defaults()
	in.SearchPages = 1
	require.NoError(t, models.Validate(in))
	job := models.NewDiscoveryJob(in)
	require.NoError(t, m.Discovery().Create(context.Background(), job))
	return job
}

func TestProcessorSpawnsScrapeJobs(t *testing.T) {
	ctx := context.Background()
	search := func(ctx context.Context, query string, page, perPage int, mode string) ([]models.SearchResult, error) {
		return []models.SearchResult{
			{Domain: "fresh.com", URL: "https://fresh.com", Score: 4.0},
			{Domain: "stale.com", URL: "https://stale.com", Score: 3.0},
		}, nil
	}
	p, m, q := newTestProcessor(t, search)

	// stale.com was scraped moments ago and must be skipped.
	m.Domains().RecordSuccess(ctx, "stale.com", "basic_http", 0.0001)

	job := createDiscoveryJob(t, m)
	require.NoError(t, p.Run(ctx, job.ID))

	got, err := m.Discovery().Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DiscoveryScraping, got.Status, "stays scraping while children run")
	assert.Equal(t, 1, got.DomainsFound)
	assert.Equal(t, 1, got.DomainsSkipped)
	require.Len(t, q.scrapes, 1)

	domains, err := m.Discovery().Domains(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, domains, 2)

	byDomain := map[string]*models.DiscoveryJobDomain{}
	for _, d := range domains {
		byDomain[d.Domain] = d
	}
	require.NotNil(t, byDomain["fresh.com"].ScrapeJobID)
	assert.Equal(t, "queued", byDomain["fresh.com"].Status)
	assert.Equal(t, q.scrapes[0].JobID, *byDomain["fresh.com"].ScrapeJobID)

	assert.Equal(t, "skipped", byDomain["stale.com"].Status)
	assert.Equal(t, "recently scraped", byDomain["stale.com"].SkipReason)
	assert.Nil(t, byDomain["stale.com"].ScrapeJobID)

	// The spawned scrape job inherits the discovery parameters.
	child, err := m.Jobs().Get(ctx, q.scrapes[0].JobID)
	require.NoError(t, err)
	assert.Equal(t, "fresh.com", child.Domain)
	assert.Equal(t, "generic", child.TemplateID)
	assert.Equal(t, 50, child.MaxPages)
	assert.Equal(t, models.JobPending, child.Status)
}

func TestProcessorCompletesWhenAllSkipped(t *testing.T) {
	ctx := context.Background()
	search := func(ctx context.Context, query string, page, perPage int, mode string) ([]models.SearchResult, error) {
		return []models.SearchResult{{Domain: "stale.com", Score: 1.0}}, nil
	}
	p, m, _ := newTestProcessor(t, search)
	m.Domains().RecordSuccess(ctx, "stale.com", "basic_http", 0.0001)

	job := createDiscoveryJob(t, m)
	require.NoError(t, p.Run(ctx, job.ID))

	got, err := m.Discovery().Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DiscoveryCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.WithinDuration(t, time.Now(), *got.CompletedAt, 5*time.Second)
}

func TestProcessorSearchFailureFailsJob(t *testing.T) {
	ctx := context.Background()
	search := func(ctx context.Context, query string, page, perPage int, mode string) ([]models.SearchResult, error) {
		return nil, errors.New("provider unavailable")
	}
	p, m, _ := newTestProcessor(t, search)

	job := createDiscoveryJob(t, m)
	require.Error(t, p.Run(ctx, job.ID))

	got, err := m.Discovery().Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DiscoveryFailed, got.Status)
	assert.Contains(t, got.ErrorMessage, "provider unavailable")
}

func TestProcessorRetriesTransientSearchFailure(t *testing.T) {
	ctx := context.Background()
	calls := 0
	search := func(ctx context.Context, query string, page, perPage int, mode string) ([]models.SearchResult, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("provider unavailable")
		}
		return []models.SearchResult{{Domain: "fresh.com", URL: "https://fresh.com", Score: 1.0}}, nil
	}
	p, m, q := newTestProcessor(t, search)
	p.Retry = retry.Policy{MaxAttempts: 2, InitialDelay: time.Millisecond, Multiplier: 2}

	job := createDiscoveryJob(t, m)
	require.NoError(t, p.Run(ctx, job.ID))

	assert.Equal(t, 2, calls)
	assert.Len(t, q.scrapes, 1)
}

func TestProcessorCapsDomainsPerQuery(t *testing.T) {
	ctx := context.Background()
	search := func(ctx context.Context, query string, page, perPage int, mode string) ([]models.SearchResult, error) {
		return []models.SearchResult{
			{Domain: "a.com", Score: 5}, {Domain: "b.com", Score: 4}, {Domain: "c.com", Score: 3},
		}, nil
	}
	m, err := store.Open(config.StoreConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	q := &recordingQueue{}
	p := NewProcessor(m, q, search, 7, 2)

	job := createDiscoveryJob(t, m)
	require.NoError(t, p.Run(ctx, job.ID))
	assert.Len(t, q.scrapes, 2)
}
