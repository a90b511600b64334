package publisher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "mindcast/pkg/domain-errors"
)

func TestInstagramClient(t *testing.T) {
	t.Run("create container posts form fields", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/ig-user/media", r.URL.Path)
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "REELS", r.PostForm.Get("media_type"))
			assert.Equal(t, "https://cdn.example/v.mp4", r.PostForm.Get("video_url"))
			assert.Equal(t, "token", r.PostForm.Get("access_token"))
			w.Write([]byte(`{"id":"container-9"}`))
		}))
		defer srv.Close()

		client := NewInstagramClient(srv.URL, "ig-user", "token")
		id, err := client.CreateContainer(context.Background(), "https://cdn.example/v.mp4", "caption")
		require.NoError(t, err)
		assert.Equal(t, "container-9", id)
	})

	t.Run("container status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/container-9", r.URL.Path)
			assert.Equal(t, "status_code", r.URL.Query().Get("fields"))
			assert.Equal(t, "token", r.URL.Query().Get("access_token"))
			w.Write([]byte(`{"status_code":"IN_PROGRESS"}`))
		}))
		defer srv.Close()

		client := NewInstagramClient(srv.URL, "ig-user", "token")
		status, err := client.ContainerStatus(context.Background(), "container-9")
		require.NoError(t, err)
		assert.Equal(t, containerStatusInProgress, status)
	})

	t.Run("invalid token is not retried", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"message":"Error validating access token","code":190}}`))
		}))
		defer srv.Close()

		client := NewInstagramClient(srv.URL, "ig-user", "expired")
		_, err := client.Publish(context.Background(), "container-9")
		require.Error(t, err)
		assert.True(t, domainerrors.HasCode(err, domainerrors.CodeUnauthorized))
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("retries server errors", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			w.Write([]byte(`{"id":"media-1"}`))
		}))
		defer srv.Close()

		client := NewInstagramClient(srv.URL, "ig-user", "token")
		id, err := client.Publish(context.Background(), "container-9")
		require.NoError(t, err)
		assert.Equal(t, "media-1", id)
		assert.Equal(t, int32(2), calls.Load())
	})
}
