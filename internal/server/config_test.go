package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Andreluss/BlackLady-Network-Game/internal/cards"
	"github.com/Andreluss/BlackLady-Network-Game/internal/game"
)

func TestConfigValidate(t *testing.T) {
	deals := singleDeal(game.NoTricks, cards.North)

	assert.NoError(t, (&Config{Port: 0, Timeout: time.Second, Deals: deals}).Validate())
	assert.Error(t, (&Config{Port: -1, Timeout: time.Second, Deals: deals}).Validate())
	assert.Error(t, (&Config{Port: 70000, Timeout: time.Second, Deals: deals}).Validate())
	assert.Error(t, (&Config{Port: 0, Timeout: 0, Deals: deals}).Validate())
	assert.Error(t, (&Config{Port: 0, Timeout: time.Second}).Validate())
}

func TestLoadFileConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.hcl")
	content := `
server {
  port            = 4242
  timeout_seconds = 7
  deal_file       = "deals.txt"
  debug           = true
}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFileConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 4242, cfg.Server.Port)
	assert.Equal(t, 7, cfg.Server.TimeoutSeconds)
	assert.Equal(t, "deals.txt", cfg.Server.DealFile)
	assert.True(t, cfg.Server.Debug)
}

func TestLoadFileConfigBad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`server { port = `), 0o644))
	_, err := LoadFileConfig(path)
	assert.Error(t, err)
}
