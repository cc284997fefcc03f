package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scoutgpt-be/internal/apperrors"
)

func validConfig() *Config {
	return &Config{
		Ai: AIConfig{
			ChunkSize:     1000,
			ChunkOverlap:  200,
			EmbeddingDim:  1536,
			MaxToolRounds: 10,
			MaxChunks:     5,
		},
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidateRejectsBadChunkParams(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero chunk size", func(c *Config) { c.Ai.ChunkSize = 0 }},
		{"negative overlap", func(c *Config) { c.Ai.ChunkOverlap = -1 }},
		{"overlap equals size", func(c *Config) { c.Ai.ChunkOverlap = c.Ai.ChunkSize }},
		{"overlap exceeds size", func(c *Config) { c.Ai.ChunkOverlap = c.Ai.ChunkSize + 100 }},
		{"zero dimension", func(c *Config) { c.Ai.EmbeddingDim = 0 }},
		{"zero tool rounds", func(c *Config) { c.Ai.MaxToolRounds = 0 }},
		{"zero max chunks", func(c *Config) { c.Ai.MaxChunks = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, apperrors.IsConfiguration(err))
		})
	}
}
