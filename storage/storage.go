// Package storage keeps uploaded product images outside the database.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// Store defines the operations the catalog needs from an object store.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	// URL returns the public address of key.
	URL(key string) string
}

// ImageKey builds a unique object key under images/ for a file uploaded for product.
func ImageKey(product, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	name := slug.Make(product)
	if name == "" {
		name = "image"
	}
	return fmt.Sprintf("images/%s-%s%s", name, uuid.New().String()[:8], ext)
}

func joinURL(base, key string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(key, "/")
}
