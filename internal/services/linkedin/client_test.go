package linkedin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postforge/internal/common/config"
	"postforge/internal/common/errors"
	"postforge/internal/common/logger"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.LinkedInConfig{
		ProviderConfig: config.ProviderConfig{
			BaseURL:    srv.URL,
			Timeout:    2000,
			MaxRetries: 0,
			BaseDelay:  1,
		},
	}
	return NewClient(cfg, logger.NewTestLogger(t))
}

// ==========================
// Profile Tests
// ==========================

func TestGetProfile(t *testing.T) {
	client := createTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me", r.URL.Path)
		assert.Equal(t, "Bearer valid-token", r.Header.Get("Authorization"))
		w.Write([]byte(`{"id":"AbC123","localizedFirstName":"Ada","localizedLastName":"Lovelace"}`))
	})

	profile, err := client.GetProfile(context.Background(), "valid-token")

	require.NoError(t, err)
	assert.Equal(t, "AbC123", profile.ID)
	assert.Equal(t, "Ada", profile.FirstName)
	assert.Equal(t, "Lovelace", profile.LastName)
}

func TestGetProfile_RejectedTokenRoutesToReconnection(t *testing.T) {
	client := createTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Invalid access token"}`, http.StatusUnauthorized)
	})

	_, err := client.GetProfile(context.Background(), "stale-token")

	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindLinkedInTokenExpired))
}

// ==========================
// Publish Tests
// ==========================

func TestPublishPost(t *testing.T) {
	client := createTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ugcPosts", r.URL.Path)
		assert.Equal(t, "2.0.0", r.Header.Get("X-Restli-Protocol-Version"))
		w.Write([]byte(`{"id":"urn:li:share:6876"}`))
	})

	postID, err := client.PublishPost(context.Background(), "valid-token", "AbC123", "Shipping season.")

	require.NoError(t, err)
	assert.Equal(t, "urn:li:share:6876", postID)
}

func TestPublishPost_ServerFailure(t *testing.T) {
	client := createTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	})

	_, err := client.PublishPost(context.Background(), "valid-token", "AbC123", "text")

	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindLinkedInFailed))
}
