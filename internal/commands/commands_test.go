package commands

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/wau-ai/wau-cli/internal/a2a"
	"github.com/wau-ai/wau-cli/internal/config"
	"github.com/wau-ai/wau-cli/internal/mockserver"
	"github.com/wau-ai/wau-cli/internal/registry"
	"github.com/wau-ai/wau-cli/internal/telemetry"
	"github.com/wau-ai/wau-cli/internal/wallet"
)

const (
	fooURL         = "https://foo.example.com"
	unreachableURL = "https://down.example.com"
	brokenURL      = "https://broken.example.com"

	fooCard = `{"name":"Foo","description":"Bar","url":"https://foo.example.com","tags":["search"]}`
)

// fastPollConfig keeps polling tests quick.
const fastPollConfig = `
[poll]
interval = "1ms"
retry_interval = "1ms"
deadline = "10s"
`

// newAPI starts a mock registry whose discovery knows fooURL and
// brokenURL. Other URLs are not found, except unreachableURL which fails
// like a network error.
func newAPI(t *testing.T, script []registry.TaskStatus) *httptest.Server {
	t.Helper()
	cards := map[string]string{
		fooURL:    fooCard,
		brokenURL: `not json`,
	}
	srv := httptest.NewServer(mockserver.New(mockserver.Config{
		Logger: telemetry.Discard(),
		Script: script,
		Fetcher: func(ctx context.Context, agentURL string) *a2a.Result {
			if agentURL == unreachableURL {
				return &a2a.Result{URL: agentURL, ExitCode: a2a.ExitNetwork, Error: "connection refused"}
			}
			card, ok := cards[agentURL]
			if !ok {
				return &a2a.Result{URL: agentURL}
			}
			return &a2a.Result{URL: agentURL, Found: true, Card: []byte(card)}
		},
	}))
	t.Cleanup(srv.Close)
	return srv
}

// execute runs the root command with fresh flags and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	stdout, _, err := executeFull(t, args...)
	return stdout, err
}

func executeFull(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return executeWithInput(t, "", args...)
}

// executeWithInput runs the root command with stdin as its input.
func executeWithInput(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)

	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(fastPollConfig), 0o600))
	t.Setenv(config.EnvConfig, cfgFile)
	for _, env := range []string{config.EnvAPIURL, config.EnvLang, config.EnvLogLevel, config.EnvLogFormat, config.EnvPollDeadline, wallet.EnvPrivateKey} {
		t.Setenv(env, "")
	}

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	finish()
	return stdout.String(), stderr.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
