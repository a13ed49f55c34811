package googletasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"tasktrack/internal/config"
)

func TestSaveLoadToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.TokenFile)
	expiry := time.Date(2026, 1, 19, 10, 0, 0, 0, time.UTC)
	in := &oauth2.Token{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer", Expiry: expiry}

	if err := SaveToken(path, in); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected mode 0600, got %o", info.Mode().Perm())
	}

	out, err := LoadToken(path)
	if err != nil {
		t.Fatalf("LoadToken: %v", err)
	}
	if out.AccessToken != "access" || out.RefreshToken != "refresh" || !out.Expiry.Equal(expiry) {
		t.Errorf("unexpected token %+v", out)
	}
}

func TestLoadToken_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadToken(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing token")
	}

	path := filepath.Join(dir, config.TokenFile)
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadToken(path); err == nil {
		t.Error("expected error for invalid token")
	}
}

func TestTokenUsable_NoRefreshToken(t *testing.T) {
	cfg := &config.Config{Dir: t.TempDir()}
	if err := SaveToken(cfg.TokenPath(), &oauth2.Token{AccessToken: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := TokenUsable(context.Background(), cfg); !errors.Is(err, ErrNoRefreshToken) {
		t.Errorf("expected ErrNoRefreshToken, got %v", err)
	}
}
