// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agroviatech/portal/internal/platform/config"
)

/*
TestLoad_Defaults verifies that a minimal environment yields an in-memory setup.
*/
func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s3cret")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.DriverMemory, cfg.StorageDriver)
	assert.Equal(t, config.DriverMemory, cfg.SessionDriver)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.SeedDemoUsers)
	assert.Equal(t, "admin123", cfg.DemoPassword)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.True(t, cfg.IsDevelopment())
}

/*
TestLoad_MissingSecret ensures the signing secret is mandatory.
*/
func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")

	_, err := config.Load()
	assert.Error(t, err)
}

/*
TestConfig_Validate covers driver-dependent requirements.
*/
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantErr bool
	}{
		{"memory_ok", config.Config{StorageDriver: "memory", SessionDriver: "memory", TokenTTL: time.Hour}, false},
		{"postgres_without_url", config.Config{StorageDriver: "postgres", SessionDriver: "memory", TokenTTL: time.Hour}, true},
		{"postgres_with_url", config.Config{StorageDriver: "postgres", DatabaseURL: "postgres://x", SessionDriver: "memory", TokenTTL: time.Hour}, false},
		{"redis_without_url", config.Config{StorageDriver: "memory", SessionDriver: "redis", TokenTTL: time.Hour}, true},
		{"unknown_storage", config.Config{StorageDriver: "sqlite", SessionDriver: "memory", TokenTTL: time.Hour}, true},
		{"zero_ttl", config.Config{StorageDriver: "memory", SessionDriver: "memory"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

/*
TestConfig_AllowedOrigins trims and drops empty entries.
*/
func TestConfig_AllowedOrigins(t *testing.T) {
	cfg := config.Config{ExtraOrigins: " https://a.sn , ,https://b.sn"}
	assert.Equal(t, []string{"https://a.sn", "https://b.sn"}, cfg.AllowedOrigins())
}
