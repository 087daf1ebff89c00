package main

import (
	"bytes"
	"testing"

	"github.com/Shivanand-hulikatti/event-manager/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "Version:    dev")
}

func TestApplyServeFlags(t *testing.T) {
	t.Cleanup(func() { serverHost, serverPort = "", 0 })

	cfg := config.Config{Server: config.ServerConfig{Host: "0.0.0.0", Port: 8080}}
	applyServeFlags(&cfg)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())

	serverHost, serverPort = "127.0.0.1", 9090
	applyServeFlags(&cfg)
	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr())
}

func TestMigrateDown_RejectsZeroSteps(t *testing.T) {
	t.Cleanup(func() { rootCmd.SetArgs(nil); downSteps = 1 })

	rootCmd.SetArgs([]string{"migrate", "down", "--steps", "0"})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--steps")
}
