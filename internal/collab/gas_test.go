package collab

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ai-shine/scraping-engine/internal/engine"
)

func TestGetExistingDomains(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "get_domains", payload["action"])
		json.NewEncoder(w).Encode(map[string]any{"domains": []string{"a.co.jp", "b.co.jp"}})
	}))
	defer srv.Close()

	client := NewGASClient(srv.URL)
	domains, err := client.GetExistingDomains(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"a.co.jp", "b.co.jp"}, domains)
}

func TestGetExistingDomainsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewGASClient(srv.URL)
	_, err := client.GetExistingDomains(context.Background())
	require.Error(t, err)
}

func TestPostRetriesTransientFailure(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "get_domains", payload["action"])
		json.NewEncoder(w).Encode(map[string]any{"domains": []string{"a.co.jp"}})
	}))
	defer srv.Close()

	client := NewGASClient(srv.URL)
	domains, err := client.GetExistingDomains(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"a.co.jp"}, domains)
	require.Equal(t, 2, calls)
}

func TestSaveResults(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(map[string]any{"spreadsheet_url": "https://sheets.example.com/1"})
	}))
	defer srv.Close()

	records := []engine.EnrichedRecord{
		{CompanyName: "株式会社テスト", BaseURL: "https://test.co.jp/", ContactURL: "https://test.co.jp/contact/", Phone: "03-1234-5678", Domain: "test.co.jp"},
	}
	client := NewGASClient(srv.URL)
	url, err := client.SaveResults(context.Background(), records, "東京 IT")
	require.NoError(t, err)
	require.Equal(t, "https://sheets.example.com/1", url)

	require.Equal(t, "save_results", received["action"])
	require.Equal(t, "東京 IT", received["search_keyword"])
	companies := received["companies"].([]any)
	require.Len(t, companies, 1)
	first := companies[0].(map[string]any)
	require.Equal(t, "株式会社テスト", first["company_name"])
	require.Equal(t, "03-1234-5678", first["phone"])
}
