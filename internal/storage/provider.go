// Package storage defines the data-directory file-system abstraction.
package storage

import "github.com/starford/recvault/internal/models"

// Provider is the interface for data-directory file operations.
// All paths are relative to the provider root.
type Provider interface {
	// List returns metadata for every file under dir whose name ends with suffix.
	List(dir, suffix string) ([]models.FileMetadata, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically replaces the file at path with content.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Move renames oldPath to newPath.
	Move(oldPath, newPath string) error
	// Stat returns metadata for the file at path.
	Stat(path string) (models.FileMetadata, error)
	// Resolve returns the absolute location of path.
	Resolve(path string) (string, error)
}
