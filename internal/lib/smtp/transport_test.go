package smtp

import (
	"crypto/tls"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/fare-aggregator/internal/config"
)

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

// TestTLSConfig проверяет выбор имени сервера и минимальной версии TLS
func TestTLSConfig(t *testing.T) {
	t.Run("server name defaults to host", func(t *testing.T) {
		tr := NewTransport(config.SMTP{SMTPHost: "smtp.example.com"}, newNoopLogger())

		cfg := tr.tlsConfig()

		assert.Equal(t, "smtp.example.com", cfg.ServerName)
		assert.Equal(t, uint16(tls.VersionTLS12), cfg.MinVersion)
	})

	t.Run("explicit server name overrides host", func(t *testing.T) {
		tr := NewTransport(config.SMTP{
			SMTPHost:          "10.0.0.5",
			SMTPTLSServerName: "mail.example.com",
		}, newNoopLogger())

		cfg := tr.tlsConfig()

		assert.Equal(t, "mail.example.com", cfg.ServerName)
	})
}
