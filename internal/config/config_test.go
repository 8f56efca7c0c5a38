package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"ohpshaw-server/internal/util"
)

func TestInstance(t *testing.T) {
	clear1 := util.SetEnv("OHP_CONFIG_FILE", "testdata/config.yaml")
	defer clear1()
	clear2 := util.SetEnv("OHP_PLAYERS", "5")
	defer clear2()

	a := assert.New(t)
	config = Config{}
	cfg := Instance()
	a.Equal(":7100", cfg.Addr)
	a.Equal(":5000", cfg.HTTPAddr, "defaults are kept")
	a.Equal(5, cfg.Players)
	a.Equal("/var/lib/ohpshaw", cfg.LogDir)
	a.Equal(30*time.Second, cfg.TurnTimeout)
	a.False(cfg.AutoPlayLastCard)
	a.Equal("debug", cfg.Log.Level)
	a.True(cfg.Log.DisableAccessLogs)

	// ensure that it's only loaded once
	_ = os.Setenv("OHP_PLAYERS", "2")
	// ensure we aren't using a pointer
	cfg.Players = 0
	cfg = Instance()
	a.Equal(5, cfg.Players)
}

func TestDefaults(t *testing.T) {
	clear1 := util.SetEnv("OHP_TURN_TIMEOUT", "1m")
	defer clear1()

	assert.NoError(t, Load())
	cfg := Instance()
	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, 4, cfg.Players)
	assert.Equal(t, time.Minute, cfg.TurnTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_missingFile(t *testing.T) {
	clear1 := util.SetEnv("OHP_CONFIG_FILE", "testdata/missing.yaml")
	defer clear1()

	assert.Error(t, Load())
}
