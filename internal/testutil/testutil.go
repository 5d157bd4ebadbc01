// Package testutil provides shared test helpers for setting up vaults.
package testutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/starford/recvault/internal/events"
	"github.com/starford/recvault/internal/filestore"
	"github.com/starford/recvault/internal/storage"
	"github.com/starford/recvault/internal/vault"
)

// VaultFile is the backing file name used by TestService.
const VaultFile = "vault.json"

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestVault creates a temporary data directory with a storage.Provider.
func TestVault(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// TestService creates a file-backed vault service in a temporary data
// directory and returns it with the directory path.
func TestService(t *testing.T, observers ...events.Observer) (*vault.Service, string) {
	t.Helper()
	dir, store := TestVault(t)
	repo := filestore.NewRepository(filestore.NewCollection(store, VaultFile, DiscardLogger()), nil)
	svc := vault.NewService(repo, store, events.NewNotifier(observers...), vault.Config{},
		vault.WithLogger(DiscardLogger()))
	t.Cleanup(func() { _ = svc.Close() })
	return svc, dir
}
