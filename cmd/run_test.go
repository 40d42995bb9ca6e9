package cmd

import (
	"testing"

	"revision-validator/core/config"
	"revision-validator/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDecisionMode(t *testing.T) {
	d, err := parseDecisionMode("ask")
	require.NoError(t, err)
	assert.Empty(t, d)

	d, err = parseDecisionMode("")
	require.NoError(t, err)
	assert.Empty(t, d)

	d, err = parseDecisionMode(" Reprocess ")
	require.NoError(t, err)
	assert.Equal(t, reconcile.DecisionReprocess, d)

	d, err = parseDecisionMode("finish")
	require.NoError(t, err)
	assert.Equal(t, reconcile.DecisionFinish, d)

	_, err = parseDecisionMode("later")
	assert.ErrorIs(t, err, reconcile.ErrInvalidDecision)
}

func TestApplyRunFlags(t *testing.T) {
	t.Cleanup(func() {
		inputPath, inputSheet, decisionMode, maxReprocess, serveAPI = "", "", "", -1, false
	})

	cfg := &config.Config{}
	cfg.Files.Input = "lista.xlsx"
	cfg.Run.MaxReprocess = 1

	maxReprocess = -1
	applyRunFlags(cfg)
	assert.Equal(t, "lista.xlsx", cfg.Files.Input)
	assert.Equal(t, 1, cfg.Run.MaxReprocess)
	assert.False(t, cfg.Server.Enabled)

	inputPath, inputSheet, decisionMode, maxReprocess, serveAPI = "orders.xlsx", "Plan1", "finish", 0, true
	applyRunFlags(cfg)
	assert.Equal(t, "orders.xlsx", cfg.Files.Input)
	assert.Equal(t, "Plan1", cfg.Files.InputSheet)
	assert.Equal(t, "finish", cfg.Run.Decision)
	assert.Equal(t, 0, cfg.Run.MaxReprocess)
	assert.True(t, cfg.Server.Enabled)
}
