package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustLoad(t *testing.T) {
	t.Run("Fills defaults for missing keys", func(t *testing.T) {
		// Given: A config file with only the port
		path := filepath.Join(t.TempDir(), "config.yml")
		require.NoError(t, os.WriteFile(path, []byte("http-port: \"9000\"\n"), 0o600))

		// When: Loading it
		conf := MustLoad(path)

		// Then: The rest comes from defaults
		assert.Equal(t, "9000", conf.HTTPPort)
		assert.Equal(t, "localhost:6379", conf.Redis.GetRedisAddr())
		assert.Equal(t, 0, conf.Redis.DB)
		assert.Equal(t, 5*time.Second, conf.Redis.DialTimeout)
		assert.Equal(t, "google", conf.ICE.Provider)
		assert.Equal(t, 3, conf.Deck.Width)
		assert.Equal(t, 3, conf.Deck.Height)
		assert.Equal(t, 60*time.Second, conf.WebSocket.PongWait)
		assert.Equal(t, 30*time.Minute, conf.PrivateQueueTTL)
	})

	t.Run("Panics on a missing file", func(t *testing.T) {
		// When / Then: Loading a file that does not exist panics
		assert.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "none.yml")) })
	})
}
