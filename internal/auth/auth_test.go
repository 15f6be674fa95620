package auth

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStaticToken(t *testing.T) {
	tok, err := StaticToken("abc123").Token()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok != "abc123" {
		t.Errorf("expected abc123, got %q", tok)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("CRMDECK_TOKEN_TEST", "  tok-env \n")

	tok, err := FromEnv("CRMDECK_TOKEN_TEST").Token()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok != "tok-env" {
		t.Errorf("expected trimmed token, got %q", tok)
	}
}

func TestFromEnv_DefaultKey(t *testing.T) {
	t.Setenv(EnvToken, "tok-default")

	tok, err := FromEnv("").Token()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok != "tok-default" {
		t.Errorf("expected tok-default, got %q", tok)
	}
}

func TestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("tok-file\n"), 0o600); err != nil {
		t.Fatalf("write token file: %v", err)
	}

	tok, err := FromFile(path).Token()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok != "tok-file" {
		t.Errorf("expected tok-file, got %q", tok)
	}
}

func TestFromFile_Missing(t *testing.T) {
	_, err := FromFile(filepath.Join(t.TempDir(), "nope")).Token()
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestChain(t *testing.T) {
	src := Chain{
		StaticToken(""),
		FromFile(filepath.Join(t.TempDir(), "nope")),
		StaticToken("tok-last"),
	}

	tok, err := src.Token()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok != "tok-last" {
		t.Errorf("expected tok-last, got %q", tok)
	}
}

func TestChain_AllEmpty(t *testing.T) {
	tok, err := Chain{StaticToken(""), StaticToken("")}.Token()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok != "" {
		t.Errorf("expected empty token, got %q", tok)
	}
}

func TestChain_ErrorOnlyWhenNoToken(t *testing.T) {
	missing := FromFile(filepath.Join(t.TempDir(), "nope"))

	if _, err := (Chain{missing}).Token(); err == nil {
		t.Error("expected error when the only source fails")
	}

	tok, err := Chain{missing, StaticToken("tok")}.Token()
	if err != nil {
		t.Errorf("expected fallback to suppress error, got %v", err)
	}
	if tok != "tok" {
		t.Errorf("expected tok, got %q", tok)
	}
}
