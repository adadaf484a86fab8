package mockserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wau-ai/wau-cli/internal/a2a"
	"github.com/wau-ai/wau-cli/internal/agentcard"
	"github.com/wau-ai/wau-cli/internal/client"
	"github.com/wau-ai/wau-cli/internal/registry"
	"github.com/wau-ai/wau-cli/internal/telemetry"
	"github.com/wau-ai/wau-cli/internal/wallet"
)

func newTestServer(t *testing.T, cfg Config) (*httptest.Server, *registry.Client) {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = telemetry.Discard()
	}
	srv := httptest.NewServer(New(cfg))
	t.Cleanup(srv.Close)
	return srv, registry.New(srv.URL, client.New(client.WithTimeout(5*time.Second)))
}

func registration(name, url string) agentcard.Registration {
	f := agentcard.NewForm()
	f.Name = name
	f.Description = "Bar"
	f.URL = url
	return f.Registration()
}

func postJSON(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, Config{})

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestDiscover_ThroughWellKnownPaths(t *testing.T) {
	agent := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/.well-known/agent.json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"Foo","description":"Bar","capabilities":{"streaming":true}}`))
	}))
	defer agent.Close()

	_, reg := newTestServer(t, Config{})

	form, err := reg.Discover(context.Background(), agent.URL)
	require.NoError(t, err)
	assert.Equal(t, "Foo", form.Name)
	assert.Equal(t, []string{"streaming"}, form.Capabilities)
	assert.Equal(t, "USD", form.Currency)
}

func TestDiscover_Errors(t *testing.T) {
	tests := []struct {
		name       string
		result     *a2a.Result
		body       string
		wantStatus int
		wantDetail string
	}{
		{
			name:       "empty url",
			body:       `{"url":" "}`,
			wantStatus: http.StatusBadRequest,
			wantDetail: "url is required",
		},
		{
			name:       "bad body",
			body:       `not json`,
			wantStatus: http.StatusBadRequest,
			wantDetail: "invalid request body",
		},
		{
			name:       "not found",
			result:     &a2a.Result{ExitCode: 1, Error: "no agent card found"},
			body:       `{"url":"https://nothing.example.com"}`,
			wantStatus: http.StatusNotFound,
			wantDetail: "no agent card found at https://nothing.example.com",
		},
		{
			name:       "invalid card",
			result:     &a2a.Result{ExitCode: a2a.ExitInvalidCard, Error: "invalid JSON"},
			body:       `{"url":"https://bad.example.com"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantDetail: "invalid JSON",
		},
		{
			name:       "network",
			result:     &a2a.Result{ExitCode: a2a.ExitNetwork, Error: "connection refused"},
			body:       `{"url":"https://down.example.com"}`,
			wantStatus: http.StatusBadGateway,
			wantDetail: "could not reach https://down.example.com: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, Config{
				Fetcher: func(ctx context.Context, agentURL string) *a2a.Result { return tt.result },
			})

			resp, body := postJSON(t, srv.URL+"/discover", tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantDetail, body["detail"])
		})
	}
}

func TestRegister_FullProgression(t *testing.T) {
	_, reg := newTestServer(t, Config{})
	ctx := context.Background()

	id, err := reg.Register(ctx, registration("Foo", "https://foo.example.com"))
	require.NoError(t, err)
	assert.Len(t, id, 26)

	var got []registry.TaskStatus
	for i := 0; i < 6; i++ {
		s, err := reg.Status(ctx, id)
		require.NoError(t, err)
		got = append(got, s)
	}

	assert.Equal(t, registry.StatusPending, got[0].Status)
	assert.Equal(t, "scanning endpoints", got[1].Progress)
	assert.Equal(t, "red-team testing", got[2].Progress)
	assert.Equal(t, "computing trust score", got[3].Progress)
	require.True(t, got[4].IsSuccess())
	require.NotNil(t, got[4].TrustScore)
	assert.Equal(t, TrustScore("Foo"), *got[4].TrustScore)

	// Terminal status repeats
	assert.Equal(t, got[4], got[5])
}

func TestRegister_Duplicate(t *testing.T) {
	tests := []struct {
		name   string
		first  agentcard.Registration
		second agentcard.Registration
	}{
		{"same url", registration("Foo", "https://foo.example.com"), registration("Other", "https://FOO.example.com/")},
		{"same name without url", registration("Foo", ""), registration(" foo ", "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, reg := newTestServer(t, Config{})
			_, err := reg.Register(context.Background(), tt.first)
			require.NoError(t, err)

			_, err = reg.Register(context.Background(), tt.second)
			assert.True(t, registry.IsDuplicate(err))
		})
	}
}

func TestRegister_SameNameDifferentURL(t *testing.T) {
	_, reg := newTestServer(t, Config{})
	_, err := reg.Register(context.Background(), registration("Foo", "https://a.example.com"))
	require.NoError(t, err)
	_, err = reg.Register(context.Background(), registration("Foo", "https://b.example.com"))
	assert.NoError(t, err)
}

func TestRegister_Rejected(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantDetail any
	}{
		{
			name:       "missing description",
			body:       `{"name":"Foo","description":"  "}`,
			wantStatus: http.StatusBadRequest,
			wantDetail: "name and description are required",
		},
		{
			name:       "not json",
			body:       `{`,
			wantStatus: http.StatusBadRequest,
			wantDetail: "invalid JSON body",
		},
		{
			name:       "schema violation",
			body:       `{"name":"Foo","description":"Bar","sla":2}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, Config{})
			resp, body := postJSON(t, srv.URL+"/register", tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantDetail != nil {
				assert.Equal(t, tt.wantDetail, body["detail"])
				return
			}
			list, ok := body["detail"].([]any)
			require.True(t, ok, "detail should be a list")
			assert.NotEmpty(t, list)
		})
	}
}

func TestRegister_Attestation(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signer := wallet.NewEVMSigner(key)

	srv, _ := newTestServer(t, Config{})
	signed := registry.New(srv.URL, nil, registry.WithSigner(signer))

	_, err = signed.Register(context.Background(), registration("Signed", "https://signed.example.com"))
	require.NoError(t, err)

	// A signature from another key is rejected
	other, err := crypto.GenerateKey()
	require.NoError(t, err)
	_, err = registry.New(srv.URL, nil, registry.WithSigner(&mismatchedSigner{EVMSigner: wallet.NewEVMSigner(other), publisher: signer.Publisher()})).
		Register(context.Background(), registration("Forged", "https://forged.example.com"))

	var apiErr *registry.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Detail, "attestation rejected")
}

// mismatchedSigner signs with one key but claims another publisher.
type mismatchedSigner struct {
	*wallet.EVMSigner
	publisher string
}

func (s *mismatchedSigner) Publisher() string { return s.publisher }

func TestStatus_Unknown(t *testing.T) {
	_, reg := newTestServer(t, Config{})
	_, err := reg.Status(context.Background(), "01HZZZZZZZZZZZZZZZZZZZZZZZ")

	var apiErr *registry.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "task not found", apiErr.Detail)
}

func TestStatus_Script(t *testing.T) {
	_, reg := newTestServer(t, Config{Script: []registry.TaskStatus{
		{Status: registry.StatusProcessing},
		{Status: registry.StatusFailed, Error: "red-team found a prompt injection"},
	}})
	ctx := context.Background()

	id, err := reg.Register(ctx, registration("Foo", ""))
	require.NoError(t, err)

	first, err := reg.Status(ctx, id)
	require.NoError(t, err)
	assert.False(t, first.IsTerminal())

	second, err := reg.Status(ctx, id)
	require.NoError(t, err)
	assert.True(t, second.IsFailure())
	assert.Equal(t, "red-team found a prompt injection", second.Error)
}

func TestMetricsEndpoint(t *testing.T) {
	metrics := telemetry.NewMetrics()
	srv, reg := newTestServer(t, Config{Metrics: metrics})

	_, err := reg.Register(context.Background(), registration("Foo", ""))
	require.NoError(t, err)
	_, err = reg.Register(context.Background(), registration("Foo", ""))
	require.Error(t, err)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `wau_registry_requests_total{op="register",outcome="duplicate"} 1`)
	assert.Contains(t, buf.String(), `wau_registry_requests_total{op="register",outcome="ok"} 1`)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := New(Config{Addr: ln.Addr().String(), Logger: telemetry.Discard()})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestTrustScore(t *testing.T) {
	for _, name := range []string{"Foo", "Bar", "a much longer agent name", ""} {
		s := TrustScore(name)
		assert.GreaterOrEqual(t, s, 60.0)
		assert.LessOrEqual(t, s, 100.0)
		assert.Equal(t, s, TrustScore(strings.ToUpper(name)))
	}
}
