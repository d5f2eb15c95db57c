package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPingVerifier_Verify(t *testing.T) {
	t.Run("reachable url", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodHead, r.Method)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		v := NewPingVerifier(time.Second)

		assert.True(t, v.Verify(context.Background(), server.URL))
	})

	t.Run("error status counts as unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		v := NewPingVerifier(time.Second)

		assert.False(t, v.Verify(context.Background(), server.URL))
	})

	t.Run("timeout counts as unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()

		v := NewPingVerifier(50 * time.Millisecond)

		assert.False(t, v.Verify(context.Background(), server.URL))
	})

	t.Run("malformed url", func(t *testing.T) {
		v := NewPingVerifier(time.Second)

		assert.False(t, v.Verify(context.Background(), "://not-a-url"))
	})
}
