package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakeb2b/scraper/models"
)

func samplePayload() *Payload {
	return NewPayload("manual", "0b5e7a2e-0000-0000-0000-000000000001", []*models.ScrapedData{
		{Domain: "example.com", DataType: models.DataTypeBlogURL, URL: "https://example.com/blog/post"},
	})
}

func TestDeliverSignsAndPosts(t *testing.T) {
	const secret = "s3cret"
	var gotSig string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get("X-Scraper-Signature")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	payload := samplePayload()
	require.NoError(t, Deliver(context.Background(), srv.URL, secret, payload))

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(gotBody)
	assert.Equal(t, "sha256="+hex.EncodeToString(mac.Sum(nil)), gotSig)

	var decoded Payload
	require.NoError(t, json.Unmarshal(gotBody, &decoded))
	assert.Equal(t, "lake_b2b_scraper", decoded.Source)
	assert.Equal(t, "manual", decoded.Trigger)
	assert.Equal(t, 1, decoded.Count)
	require.Len(t, decoded.Data, 1)
	assert.Equal(t, "example.com", decoded.Data[0].Domain)
}

func TestDeliverNoSecretOmitsSignature(t *testing.T) {
	var gotSig string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get("X-Scraper-Signature")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	require.NoError(t, Deliver(context.Background(), srv.URL, "", samplePayload()))
	assert.Empty(t, gotSig)
}

func TestDeliverAcceptsRedirectClass(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotModified)
	}))
	defer srv.Close()

	assert.NoError(t, Deliver(context.Background(), srv.URL, "", samplePayload()))
}

func TestDeliverRejects4xxAnd5xx(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusInternalServerError} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		err := Deliver(context.Background(), srv.URL, "", samplePayload())
		assert.Error(t, err, "status %d must fail delivery", status)
		srv.Close()
	}
}
