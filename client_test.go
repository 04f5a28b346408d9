package jwksclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/auth0/go-jwks-client/jwks"
)

const (
	validJWKS = `{"keys":[{"alg":"RS256","kty":"RSA","use":"sig","x5c":["testPublicKey"],"n":"testN","e":"AQAB","kid":"testKid","x5t":"testX5t"}]}`

	validJWKSWithNoSigningKey = `{"keys":[{"alg":"RS256","kty":"RSA","use":"nosig","x5c":["testPublicKey"],"n":"testN","e":"AQAB","kid":"testKid","x5t":"testX5t"}]}`

	validJWKSWithEmptyCert = `{"keys":[{"alg":"RS256","kty":"RSA","use":"sig","x5c":[""],"n":"testN","e":"AQAB","kid":"testKid","x5t":"testX5t"}]}`

	validJWKSWithNoCert = `{"keys":[{"alg":"RS256","kty":"RSA","use":"sig","x5c":[],"n":"testN","e":"AQAB","kid":"testKid","x5t":"testX5t"}]}`
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// stubHTTPClient answers every request with the given status and body, or
// fails with err when it is set. It counts the requests it sees.
func stubHTTPClient(status int, body string, err error, requestCount *int32) *http.Client {
	return &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			atomic.AddInt32(requestCount, 1)
			if err != nil {
				return nil, err
			}
			return &http.Response{
				StatusCode: status,
				Header:     http.Header{"Content-Type": []string{"application/json"}},
				Body:       io.NopCloser(strings.NewReader(body)),
				Request:    r,
			}, nil
		}),
	}
}

// setupTestServer serves body as the JWKS and counts requests.
func setupTestServer(t *testing.T, body string, requestCount *int32) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(requestCount, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
}

func newTestClient(t *testing.T, opts ...Option) *Client {
	t.Helper()

	client, err := New(opts...)
	require.NoError(t, err)
	return client
}

func Test_GetSigningKey(t *testing.T) {
	t.Run("It does a GET request to the given URL", func(t *testing.T) {
		var requestCount int32
		var method, path string

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&requestCount, 1)
			method = r.Method
			path = r.URL.Path
			_, _ = w.Write([]byte(validJWKS))
		}))
		defer server.Close()

		client := newTestClient(t, WithURL(server.URL+"/.well-known/jwks.json"))

		_, err := client.GetSigningKey(context.Background(), "testKid")
		require.NoError(t, err)

		assert.Equal(t, int32(1), atomic.LoadInt32(&requestCount))
		assert.Equal(t, http.MethodGet, method)
		assert.Equal(t, "/.well-known/jwks.json", path)
	})

	t.Run("It returns the public key for the given kid", func(t *testing.T) {
		var requestCount int32
		server := setupTestServer(t, validJWKS, &requestCount)
		defer server.Close()

		client := newTestClient(t, WithURL(server.URL))

		key, err := client.GetSigningKey(context.Background(), "testKid")
		require.NoError(t, err)

		expected := jwks.SigningKey{
			KID:       "testKid",
			PublicKey: "-----BEGIN CERTIFICATE-----\ntestPublicKey\n-----END CERTIFICATE-----\n",
		}
		if diff := cmp.Diff(expected, key); diff != "" {
			t.Errorf("GetSigningKey() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("It fails if no signing key matches the given kid", func(t *testing.T) {
		var requestCount int32
		server := setupTestServer(t, validJWKS, &requestCount)
		defer server.Close()

		client := newTestClient(t, WithURL(server.URL))

		_, err := client.GetSigningKey(context.Background(), "wrongKid")
		require.Error(t, err)
		assert.EqualError(t, err, "Unable to find a signing key that matches 'wrongKid'")
		assert.Equal(t, jwks.KindSigningKeyNotFound, jwks.KindOf(err))
		assert.Zero(t, client.CachedKeys())
	})

	t.Run("It fails with the cause's message when the GET request fails", func(t *testing.T) {
		var requestCount int32
		client := newTestClient(t,
			WithURL("https://testURL"),
			WithCustomClient(stubHTTPClient(0, "", errors.New("testError"), &requestCount)),
		)

		_, err := client.GetSigningKey(context.Background(), "testKid")
		require.Error(t, err)
		assert.EqualError(t, err, "Couldn't load jwks, testError")
		assert.Equal(t, jwks.KindJWKS, jwks.KindOf(err))
	})

	t.Run("It fails with the status code when the response is not 2xx", func(t *testing.T) {
		var requestCount int32
		client := newTestClient(t,
			WithURL("https://testURL"),
			WithCustomClient(stubHTTPClient(109, `{"someProperty":"someText"}`, nil, &requestCount)),
		)

		_, err := client.GetSigningKey(context.Background(), "testKid")
		require.Error(t, err)
		assert.EqualError(t, err, "Couldn't get JWKS, Http Error 109")
		assert.Equal(t, jwks.KindJWKS, jwks.KindOf(err))
	})

	t.Run("It fails when the response has no keys", func(t *testing.T) {
		var requestCount int32
		client := newTestClient(t,
			WithURL("https://testURL"),
			WithCustomClient(stubHTTPClient(http.StatusOK, `{"someProperty":"someText"}`, nil, &requestCount)),
		)

		_, err := client.GetSigningKey(context.Background(), "testKid")
		require.Error(t, err)
		assert.EqualError(t, err, "The JWKS did not contain any keys")
		assert.Equal(t, jwks.KindJWKS, jwks.KindOf(err))
	})

	t.Run("It fails when there are no signing keys", func(t *testing.T) {
		var requestCount int32
		server := setupTestServer(t, validJWKSWithNoSigningKey, &requestCount)
		defer server.Close()

		client := newTestClient(t, WithURL(server.URL))

		_, err := client.GetSigningKey(context.Background(), "testKid")
		require.Error(t, err)
		assert.EqualError(t, err, "The JWKS did not contain any signing keys")
		assert.Equal(t, jwks.KindJWKS, jwks.KindOf(err))
	})

	t.Run("It returns an empty public key when the certificate is empty", func(t *testing.T) {
		var requestCount int32
		server := setupTestServer(t, validJWKSWithEmptyCert, &requestCount)
		defer server.Close()

		client := newTestClient(t, WithURL(server.URL))

		key, err := client.GetSigningKey(context.Background(), "testKid")
		require.NoError(t, err)
		assert.Equal(t, jwks.SigningKey{KID: "testKid", PublicKey: ""}, key)
	})

	t.Run("It fails when the certificate list is empty", func(t *testing.T) {
		var requestCount int32
		server := setupTestServer(t, validJWKSWithNoCert, &requestCount)
		defer server.Close()

		client := newTestClient(t, WithURL(server.URL))

		_, err := client.GetSigningKey(context.Background(), "testKid")
		require.Error(t, err)
		assert.EqualError(t, err, "The JWKS did not contain any signing keys")
	})

	t.Run("It caches the result and does not fetch again for the same kid", func(t *testing.T) {
		var requestCount int32
		server := setupTestServer(t, validJWKS, &requestCount)
		defer server.Close()

		client := newTestClient(t, WithURL(server.URL))

		first, err := client.GetSigningKey(context.Background(), "testKid")
		require.NoError(t, err)

		for i := 0; i < 5; i++ {
			again, err := client.GetSigningKey(context.Background(), "testKid")
			require.NoError(t, err)
			assert.Equal(t, first, again)
		}

		assert.Equal(t, int32(1), atomic.LoadInt32(&requestCount))
		assert.Equal(t, 1, client.CachedKeys())
	})

	t.Run("It serves cached keys even when the endpoint goes away", func(t *testing.T) {
		var requestCount int32
		server := setupTestServer(t, validJWKS, &requestCount)

		client := newTestClient(t, WithURL(server.URL))

		_, err := client.GetSigningKey(context.Background(), "testKid")
		require.NoError(t, err)
		server.Close()

		_, err = client.GetSigningKey(context.Background(), "testKid")
		require.NoError(t, err)

		_, err = client.GetSigningKey(context.Background(), "otherKid")
		require.Error(t, err)
		assert.True(t, strings.HasPrefix(err.Error(), "Couldn't load jwks, "), err.Error())
	})

	t.Run("It does not cache failures", func(t *testing.T) {
		var requestCount int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&requestCount, 1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte(validJWKS))
		}))
		defer server.Close()

		client := newTestClient(t, WithURL(server.URL))

		_, err := client.GetSigningKey(context.Background(), "testKid")
		require.EqualError(t, err, "Couldn't get JWKS, Http Error 503")

		key, err := client.GetSigningKey(context.Background(), "testKid")
		require.NoError(t, err)
		assert.Equal(t, "testKid", key.KID)
		assert.Equal(t, int32(2), atomic.LoadInt32(&requestCount))
	})

	t.Run("It does not share cache entries between clients", func(t *testing.T) {
		var requestCount int32
		server := setupTestServer(t, validJWKS, &requestCount)
		defer server.Close()

		first := newTestClient(t, WithURL(server.URL))
		second := newTestClient(t, WithURL(server.URL))

		_, err := first.GetSigningKey(context.Background(), "testKid")
		require.NoError(t, err)
		_, err = second.GetSigningKey(context.Background(), "testKid")
		require.NoError(t, err)

		assert.Equal(t, int32(2), atomic.LoadInt32(&requestCount))
	})

	t.Run("It does not coalesce concurrent misses for the same kid", func(t *testing.T) {
		const callers = 2

		var requestCount int32
		var arrived sync.WaitGroup
		arrived.Add(callers)

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&requestCount, 1)
			arrived.Done()

			// Hold every response until all callers have issued their request.
			done := make(chan struct{})
			go func() {
				arrived.Wait()
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(5 * time.Second):
			}

			_, _ = w.Write([]byte(validJWKS))
		}))
		defer server.Close()

		client := newTestClient(t, WithURL(server.URL))

		var wg sync.WaitGroup
		errs := make(chan error, callers)
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := client.GetSigningKey(context.Background(), "testKid")
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			assert.NoError(t, err)
		}
		assert.Equal(t, int32(callers), atomic.LoadInt32(&requestCount))
		assert.Equal(t, 1, client.CachedKeys())
	})

	t.Run("It is cancelled with the context", func(t *testing.T) {
		var requestCount int32
		server := setupTestServer(t, validJWKS, &requestCount)
		defer server.Close()

		client := newTestClient(t, WithURL(server.URL))

		ctx, cancel := context.WithTimeout(context.Background(), 0)
		defer cancel()

		_, err := client.GetSigningKey(ctx, "testKid")
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Zero(t, client.CachedKeys())
	})
}

type recordingMetrics struct {
	mu         sync.Mutex
	counters   map[string]int
	histograms map[string]int
	gauges     map[string]float64
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		counters:   map[string]int{},
		histograms: map[string]int{},
		gauges:     map[string]float64{},
	}
}

func (m *recordingMetrics) IncCounter(name string, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range tags {
		m.counters[name+":"+v]++
	}
}

func (m *recordingMetrics) ObserveHistogram(name string, value float64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.histograms[name]++
}

func (m *recordingMetrics) SetGauge(name string, value float64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gauges[name] = value
}

func Test_GetSigningKeyInstrumentation(t *testing.T) {
	var requestCount int32
	server := setupTestServer(t, validJWKS, &requestCount)
	defer server.Close()

	metrics := newRecordingMetrics()
	client := newTestClient(t,
		WithURL(server.URL),
		WithMetrics(metrics),
		WithTracer(NewOpenTelemetryTracer(noop.NewTracerProvider().Tracer("test"))),
	)

	_, err := client.GetSigningKey(context.Background(), "testKid")
	require.NoError(t, err)
	_, err = client.GetSigningKey(context.Background(), "testKid")
	require.NoError(t, err)
	_, err = client.GetSigningKey(context.Background(), "wrongKid")
	require.Error(t, err)

	assert.Equal(t, 1, metrics.counters[MetricCacheRequests+":hit"])
	assert.Equal(t, 2, metrics.counters[MetricCacheRequests+":miss"])
	assert.Equal(t, 2, metrics.counters[MetricFetches+":ok"])
	assert.Equal(t, 2, metrics.histograms[MetricFetchDuration])
	assert.Equal(t, float64(1), metrics.gauges[MetricCachedKeys])
}
