package routing

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageParsesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/usage", r.URL.Path)
		assert.Equal(t, "sess 1", r.URL.Query().Get("sessionId"))
		w.Write([]byte(`{"currentModel":{"model":"claude-sonnet-4-5","isActual":true}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	usage, err := client.Usage("sess 1")
	require.NoError(t, err)
	require.NotNil(t, usage.CurrentModel)
	assert.Equal(t, "claude-sonnet-4-5", usage.CurrentModel.Model)
	assert.True(t, usage.CurrentModel.IsActual)
}

func TestUsageMissingCurrentModel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	usage, err := NewClient(server.URL, time.Second).Usage("s")
	require.NoError(t, err)
	assert.Nil(t, usage.CurrentModel)
}

func TestUsageNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, time.Second).Usage("s")
	assert.Error(t, err)
}

func TestUsageMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, time.Second).Usage("s")
	assert.Error(t, err)
}

func TestUsageServerUnreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 200*time.Millisecond)
	_, err := client.Usage("s")
	assert.Error(t, err)
}
