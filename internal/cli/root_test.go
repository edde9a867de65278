package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/reshetovitsme/channel-relay/internal/shared/errors"
)

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCommand()

	names := []string{}
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "login"}, names)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config-dir"))
}

func TestLogin_RequiresAppCredentials(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("telegram_bot_token: \"123:abc\"\n"), 0o600))

	cmd := NewRootCommand()
	cmd.SetArgs([]string{"login", "--config-dir", dir})
	err := cmd.Execute()
	assert.ErrorIs(t, err, apperrors.ErrMissingAppCredentials)
}

func TestServe_RequiresBotToken(t *testing.T) {
	t.Setenv("RELAY_TELEGRAM_BOT_TOKEN", "")

	cmd := NewRootCommand()
	cmd.SetArgs([]string{"serve", "--config-dir", t.TempDir()})
	err := cmd.Execute()
	assert.ErrorIs(t, err, apperrors.ErrMissingBotToken)
}
