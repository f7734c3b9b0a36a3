package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadConfig_Defaults(t *testing.T) {
	t.Setenv("SERVER_ADDR", "")
	t.Setenv("JWT_TTL_HOURS", "")
	t.Setenv("API_BASE_URL", "")
	t.Setenv("SESSION_STORE", "")

	conf := ReadConfig()

	assert.Equal(t, "0.0.0.0:6060", conf.SERVER_ADDR)
	assert.Equal(t, 24, conf.JWT_TTL_HOURS)
	assert.Equal(t, "http://localhost:6060/api", conf.API_BASE_URL)
	assert.Equal(t, "file", conf.SESSION_STORE)
	assert.NotEmpty(t, conf.SESSION_FILE)
}

func TestReadConfig_Overrides(t *testing.T) {
	t.Setenv("JWT_TTL_HOURS", "2")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("API_BASE_URL", "https://tracker.example.com/api")

	conf := ReadConfig()

	assert.Equal(t, 2, conf.JWT_TTL_HOURS)
	assert.Equal(t, 0, conf.REDIS_DB)
	assert.Equal(t, "https://tracker.example.com/api", conf.API_BASE_URL)
}
