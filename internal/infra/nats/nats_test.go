package natsclient

import (
	"testing"

	"github.com/sifan077/LinkShelf/config"
	"github.com/stretchr/testify/assert"
)

func TestURL(t *testing.T) {
	assert.Equal(t, "nats://localhost:4222", URL(config.NATSConfig{}))
	assert.Equal(t, "nats://broker:4333", URL(config.NATSConfig{Host: "broker", Port: 4333}))
}

func TestEnabled(t *testing.T) {
	assert.False(t, Enabled(config.NATSConfig{}))
	assert.True(t, Enabled(config.NATSConfig{Host: "broker"}))
}
