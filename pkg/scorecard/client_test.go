package scorecard_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PennQuinnDad/college-quest/pkg/scorecard"
)

func noopLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func TestClient_Lookup(t *testing.T) {
	t.Run("should map scorecard ids to coordinates", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
			assert.Equal(t, "164924,166027", r.URL.Query().Get("id"))
			assert.Equal(t, "id,school.name,location.lat,location.lon", r.URL.Query().Get("fields"))

			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"results":[
				{"id":164924,"school.name":"Boston College","location.lat":42.34,"location.lon":-71.17},
				{"id":166027,"school.name":"Harvard University","location.lat":null,"location.lon":null}
			]}`)
		}))
		defer server.Close()

		client, err := scorecard.NewClient(scorecard.Config{BaseURL: server.URL, APIKey: "test-key"}, noopLogger())
		require.NoError(t, err)

		locations, err := client.Lookup(context.Background(), []string{"164924", "166027"})
		require.NoError(t, err)

		require.Len(t, locations, 1)
		assert.Equal(t, 42.34, locations["164924"].Latitude)
		assert.Equal(t, -71.17, locations["164924"].Longitude)
	})

	t.Run("should return an empty map for no ids", func(t *testing.T) {
		client, err := scorecard.NewClient(scorecard.Config{BaseURL: "http://unused", APIKey: "test-key"}, noopLogger())
		require.NoError(t, err)

		locations, err := client.Lookup(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, locations)
	})

	t.Run("should refuse an oversized batch", func(t *testing.T) {
		client, err := scorecard.NewClient(scorecard.Config{BaseURL: "http://unused", APIKey: "test-key"}, noopLogger())
		require.NoError(t, err)

		ids := make([]string, scorecard.MaxBatchSize+1)
		for i := range ids {
			ids[i] = fmt.Sprintf("%d", i)
		}

		_, err = client.Lookup(context.Background(), ids)
		assert.Error(t, err)
	})

	t.Run("should surface upstream errors", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "API_KEY_INVALID", http.StatusForbidden)
		}))
		defer server.Close()

		client, err := scorecard.NewClient(scorecard.Config{BaseURL: server.URL, APIKey: "bad-key"}, noopLogger())
		require.NoError(t, err)

		_, err = client.Lookup(context.Background(), []string{"164924"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "403")
	})

	t.Run("should require an api key", func(t *testing.T) {
		_, err := scorecard.NewClient(scorecard.Config{}, noopLogger())
		assert.Error(t, err)
	})
}
