package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wau-ai/wau-cli/internal/currency"
	"github.com/wau-ai/wau-cli/internal/i18n"
)

func TestSchemaCommand(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{nil, "defaultInputModes"},
		{[]string{"discovery"}, "defaultInputModes"},
		{[]string{"registration"}, "required"},
	}

	for _, tt := range tests {
		out, err := execute(t, append([]string{"schema"}, tt.args...)...)
		require.NoError(t, err)

		var doc map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &doc))
		assert.Contains(t, out, tt.want)
		assert.Contains(t, doc, "properties")
	}

	_, err := execute(t, "schema", "payments")
	assert.Error(t, err)
}

func TestAboutCommand(t *testing.T) {
	out, err := execute(t, "about")
	require.NoError(t, err)
	page, ok := i18n.PageIn(i18n.English, "about")
	require.True(t, ok)
	assert.Contains(t, out, page.Title)

	out, err = execute(t, "about", "waus", "--lang", "zh")
	require.NoError(t, err)
	page, _ = i18n.PageIn(i18n.Chinese, "waus")
	assert.Contains(t, out, page.Title)

	out, err = execute(t, "about", "home", "--json")
	require.NoError(t, err)
	var got i18n.Page
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.NotEmpty(t, got.Title)

	_, err = execute(t, "about", "pricing")
	require.Error(t, err)
	assert.Equal(t, ExitValidation, ExitCode(err))
}

func TestCurrenciesCommand(t *testing.T) {
	out, err := execute(t, "currencies")
	require.NoError(t, err)
	assert.Contains(t, out, "USD")
	assert.Contains(t, out, "USDC")

	out, err = execute(t, "currencies", "--json")
	require.NoError(t, err)
	var list []currency.Info
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	assert.Len(t, list, len(currency.List()))
	assert.False(t, list[0].Crypto)
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		out, err := execute(t, "completion", shell)
		require.NoError(t, err, shell)
		assert.Contains(t, out, "wau", shell)
	}

	out, err := execute(t, "completion", "zsh", "--no-descriptions")
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	_, err = execute(t, "completion", "tcsh")
	assert.Error(t, err)
}

func TestWizardRequiresTerminal(t *testing.T) {
	_, err := execute(t, "wizard")
	require.Error(t, err)
	assert.Equal(t, ExitValidation, ExitCode(err))
}
