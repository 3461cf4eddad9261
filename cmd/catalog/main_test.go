package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func executeCommand(t *testing.T, args ...string) string {
	t.Helper()
	rootCmd := newRootCmd()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("command %v failed: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func TestCommandsSeedThenReadExistingStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "catalog.db")
	common := []string{"--database-path", dbPath, "--seed-delay", "0s", "--log-level", "error"}

	listing := executeCommand(t, append([]string{"products", "--search", "grog"}, common...)...)
	if !strings.Contains(listing, "Special edition Pint of Grog") {
		t.Fatalf("expected grog products in listing:\n%s", listing)
	}
	if strings.Contains(listing, "Monocle") {
		t.Fatalf("expected search to exclude monocles:\n%s", listing)
	}

	detail := executeCommand(t, append([]string{"product", "3"}, common...)...)
	if !strings.Contains(detail, "Comment 1 for Special edition Pint of Grog") {
		t.Fatalf("expected the product's comments:\n%s", detail)
	}
}

func TestProductCommandRejectsInvalidID(t *testing.T) {
	rootCmd := newRootCmd()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"product", "0", "--database-path", filepath.Join(t.TempDir(), "catalog.db")})
	if err := rootCmd.Execute(); err == nil {
		t.Fatalf("expected an error for product id 0")
	}
}
