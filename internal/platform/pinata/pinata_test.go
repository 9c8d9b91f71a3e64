package pinata

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/certchain-backend/internal/domain/faults"
	"github.com/yungbote/certchain-backend/internal/platform/logger"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Config{BaseURL: srv.URL, APIKey: "k", APISecret: "s"}, logger.NewNop())
	require.NoError(t, err)
	return c
}

func TestPinBytes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, pathPinFile, r.URL.Path)
		assert.Equal(t, "k", r.Header.Get("pinata_api_key"))
		assert.Equal(t, "s", r.Header.Get("pinata_secret_api_key"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		body, _ := io.ReadAll(f)
		assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, body)
		assert.Equal(t, "certificate-Ana-Go.png", hdr.Filename)
		assert.JSONEq(t, `{"name":"certificate-Ana-Go.png"}`, r.FormValue("pinataMetadata"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"IpfsHash":"QmImg","PinSize":4}`))
	})

	uri, err := c.PinBytes(context.Background(), []byte{0x89, 'P', 'N', 'G'}, "certificate-Ana-Go.png")
	require.NoError(t, err)
	assert.Equal(t, "ipfs://QmImg", uri)
}

func TestPinJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, pathPinJSON, r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"name": "cert-Ana-Go"}, body["pinataMetadata"])
		assert.Equal(t, map[string]any{"name": "Certificado - Ana"}, body["pinataContent"])
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"IpfsHash":"QmMeta"}`))
	})

	uri, err := c.PinJSON(context.Background(), map[string]any{"name": "Certificado - Ana"}, "cert-Ana-Go")
	require.NoError(t, err)
	assert.Equal(t, "ipfs://QmMeta", uri)
}

func TestPinFailures(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		code   faults.Code
	}{
		{"server error", http.StatusBadGateway, `{"error":"upstream secret detail"}`, faults.CodeStorageUnavailable},
		{"rejected", http.StatusBadRequest, `{"error":"bad"}`, faults.CodeValidation},
		{"missing hash", http.StatusOK, `{}`, faults.CodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := c.PinJSON(context.Background(), map[string]any{"a": 1}, "x")
			require.Error(t, err)
			assert.Equal(t, tc.code, faults.CodeOf(err))
			assert.Equal(t, faults.OpStorePinJSON, faults.OpOf(err))
			assert.NotContains(t, err.Error(), "upstream secret detail")
		})
	}
}

func TestPinServerErrorIsNotRetried(t *testing.T) {
	var hits int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	_, err := c.PinBytes(context.Background(), []byte("png"), "certificate.png")
	assert.True(t, faults.Is(err, faults.CodeStorageUnavailable))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestPinUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c, err := New(Config{BaseURL: srv.URL, APIKey: "k", APISecret: "s"}, logger.NewNop())
	require.NoError(t, err)

	_, err = c.PinBytes(context.Background(), []byte("x"), "x.png")
	assert.True(t, faults.Is(err, faults.CodeStorageUnavailable))
	assert.Equal(t, faults.OpStorePinFile, faults.OpOf(err))
}

func TestPinBytesEmpty(t *testing.T) {
	c, err := New(Config{APIKey: "k", APISecret: "s"}, logger.NewNop())
	require.NoError(t, err)
	_, err = c.PinBytes(context.Background(), nil, "x")
	assert.True(t, faults.Is(err, faults.CodeValidation))
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(Config{APIKey: "k"}, logger.NewNop())
	assert.Error(t, err)
}

func TestJWTAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Empty(t, r.Header.Get("pinata_api_key"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	c, err := New(Config{BaseURL: srv.URL, JWT: "tok"}, logger.NewNop())
	require.NoError(t, err)
	require.NoError(t, c.Authenticate(context.Background()))
}

func TestAuthenticate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != pathTestAuth {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	})
	err := c.Authenticate(context.Background())
	assert.True(t, faults.Is(err, faults.CodeStorageUnavailable))
}
