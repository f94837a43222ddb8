package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storecrew/storecrew/internal/common/config"
	"github.com/storecrew/storecrew/internal/common/errorx"
)

func TestSearchParsesCoordinates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/local/search/address.json", r.URL.Path)
		assert.Equal(t, "KakaoAK test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "서울 강남구", r.URL.Query().Get("query"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"documents": [{
				"address": {"address_name": "서울 강남구 역삼동", "x": "127.0365", "y": "37.5002"},
				"road_address": {"address_name": "서울 강남구 테헤란로 1"}
			}]
		}`))
	}))
	defer server.Close()

	client := NewClient(&config.GeocodeConfig{APIKey: "test-key", BaseURL: server.URL, Timeout: 5 * time.Second}, zap.NewNop())

	results, err := client.Search(context.Background(), "서울 강남구")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "서울 강남구 역삼동", results[0].AddressName)
	assert.Equal(t, "서울 강남구 테헤란로 1", results[0].RoadAddress)
	assert.InDelta(t, 37.5002, results[0].Latitude, 0.0001)
	assert.InDelta(t, 127.0365, results[0].Longitude, 0.0001)
}

func TestSearchErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(&config.GeocodeConfig{APIKey: "bad", BaseURL: server.URL, Timeout: 5 * time.Second}, zap.NewNop())

	_, err := client.Search(context.Background(), "anywhere")
	assert.ErrorIs(t, err, errorx.ErrTransport)

	_, err = client.Search(context.Background(), "")
	assert.ErrorIs(t, err, errorx.ErrValidation)
}
