package googletasks_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"tasklist/internal/backend/googletasks"
	"tasklist/internal/config"
)

func TestTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.TokenFile)
	want := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	if err := googletasks.SaveToken(path, want); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		t.Errorf("expected mode 0600, got %o", mode)
	}

	got, err := googletasks.LoadToken(path)
	if err != nil {
		t.Fatalf("LoadToken: %v", err)
	}
	if got.AccessToken != want.AccessToken || got.RefreshToken != want.RefreshToken || !got.Expiry.Equal(want.Expiry) {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestLoadToken_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.TokenFile)
	if _, err := googletasks.LoadToken(path); err == nil {
		t.Error("expected error for missing token")
	}
	if err := os.WriteFile(path, []byte("{"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := googletasks.LoadToken(path); err == nil {
		t.Error("expected error for corrupt token")
	}
}

func TestOAuthConfig(t *testing.T) {
	cfg, _ := config.New(t.TempDir())
	if _, err := googletasks.OAuthConfig(cfg); err == nil {
		t.Fatal("expected error without oauth_client.json")
	}

	client := `{"installed":{"client_id":"id","client_secret":"secret","redirect_uris":["http://localhost"],"auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token"}}`
	if err := os.WriteFile(cfg.OAuthClientPath(), []byte(client), 0600); err != nil {
		t.Fatal(err)
	}
	oc, err := googletasks.OAuthConfig(cfg)
	if err != nil {
		t.Fatalf("OAuthConfig: %v", err)
	}
	if oc.ClientID != "id" || len(oc.Scopes) != 1 || oc.Scopes[0] != googletasks.Scope {
		t.Errorf("unexpected config %+v", oc)
	}
}
