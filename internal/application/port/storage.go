package port

import "context"

// FileStorage saves generated files under a base directory
type FileStorage interface {
	// Save writes content to name relative to the base directory and returns the full path
	Save(ctx context.Context, name string, content []byte) (string, error)
}
