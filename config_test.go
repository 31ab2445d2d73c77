package main

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		bind:           "127.0.0.1",
		codeLength:     4,
		maxMessageSize: 4096,
		port:           8080,
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{name: "defaults", modify: func(*Config) {}},
		{name: "tls pair", modify: func(c *Config) { c.tlsCert, c.tlsKey = "cert.pem", "key.pem" }},
		{name: "cert without key", modify: func(c *Config) { c.tlsCert = "cert.pem" }, wantErr: true},
		{name: "key without cert", modify: func(c *Config) { c.tlsKey = "key.pem" }, wantErr: true},
		{name: "port zero", modify: func(c *Config) { c.port = 0 }, wantErr: true},
		{name: "port too large", modify: func(c *Config) { c.port = 65536 }, wantErr: true},
		{name: "code too short", modify: func(c *Config) { c.codeLength = 3 }, wantErr: true},
		{name: "code too long", modify: func(c *Config) { c.codeLength = 9 }, wantErr: true},
		{name: "tiny messages", modify: func(c *Config) { c.maxMessageSize = 64 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)

			err := cfg.validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigScheme(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "http", cfg.scheme())

	cfg.tlsCert, cfg.tlsKey = "cert.pem", "key.pem"
	assert.Equal(t, "https", cfg.scheme())
}

func TestConfigLogLevel(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, zerolog.WarnLevel, cfg.logLevel())

	cfg.verbose = true
	assert.Equal(t, zerolog.DebugLevel, cfg.logLevel())
}

func TestNewCmdDefaults(t *testing.T) {
	cfg := &Config{}
	newCmd(cfg)

	assert.Equal(t, "0.0.0.0", cfg.bind)
	assert.Equal(t, 8080, cfg.port)
	assert.Equal(t, 4, cfg.codeLength)
	assert.Equal(t, int64(4096), cfg.maxMessageSize)
	assert.False(t, cfg.verbose)
}

func TestNewCmdReadsEnvironment(t *testing.T) {
	t.Setenv("WEREWOLF_PORT", "9090")
	t.Setenv("WEREWOLF_CODE_LENGTH", "6")
	t.Setenv("WEREWOLF_VERBOSE", "true")

	cfg := &Config{}
	newCmd(cfg)

	assert.Equal(t, 9090, cfg.port)
	assert.Equal(t, 6, cfg.codeLength)
	assert.True(t, cfg.verbose)
}

func TestNewCmdRejectsInvalidFlags(t *testing.T) {
	cfg := &Config{}
	cmd := newCmd(cfg)
	cmd.SetArgs([]string{"--code-length", "2"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "code length")
}
