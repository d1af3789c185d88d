package config

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadConfigRequiresPort(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("WEB_PANEL_URL", "http://localhost:5287")

	_, err := LoadConfig(quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
}

func TestLoadConfigRequiresWebPanel(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("WEB_PANEL_URL", "")

	_, err := LoadConfig(quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WEB_PANEL_URL")
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("WEB_PANEL_URL", "http://localhost:5287/")
	t.Setenv("API_BASE_URL", "")
	t.Setenv("ENV", "")
	t.Setenv("SIGNIN_TIMEOUT", "")
	t.Setenv("VALIDATE_TIMEOUT", "")
	t.Setenv("MENU_LANGUAGE_ID", "")
	t.Setenv("TABLE_ROWS_PER_PAGE", "")
	t.Setenv("SESSION_COOKIE_NAME", "")

	cfg, err := LoadConfig(quietLogger())
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5287", cfg.Backend.WebPanelURL)
	assert.Equal(t, "http://localhost:5287/api", cfg.Backend.APIBaseURL)
	assert.Equal(t, 1, cfg.Backend.MenuLanguageID)
	assert.Equal(t, 10*time.Second, cfg.Backend.SignInTimeout)
	assert.Equal(t, 5*time.Second, cfg.Backend.ValidateTimeout)
	assert.Equal(t, 5, cfg.Table.RowsPerPage)
	assert.Equal(t, "zupos_session", cfg.Session.CookieName)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoadConfigRejectsRelativeWebPanel(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("WEB_PANEL_URL", "localhost:5287")

	_, err := LoadConfig(quietLogger())
	require.Error(t, err)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("WEB_PANEL_URL", "https://panel.example.com")
	t.Setenv("SIGNIN_TIMEOUT", "3s")
	t.Setenv("TABLE_ROWS_PER_PAGE", "25")
	t.Setenv("ENV", "production")
	t.Setenv("SESSION_COOKIE_SECURE", "")

	cfg, err := LoadConfig(quietLogger())
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.Backend.SignInTimeout)
	assert.Equal(t, 25, cfg.Table.RowsPerPage)
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.Session.CookieSecure)
}

func TestCalculateBackoff(t *testing.T) {
	assert.Equal(t, time.Second, calculateBackoff(time.Second, 1))
	assert.Equal(t, 4*time.Second, calculateBackoff(time.Second, 3))
	assert.Equal(t, 30*time.Second, calculateBackoff(time.Second, 10))
	assert.Equal(t, time.Duration(0), calculateBackoff(0, 2))
}
