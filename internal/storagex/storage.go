package storagex

import (
	"fmt"
	"strings"

	"github.com/storecrew/storecrew/internal/common/config"
)

// URLBuilder constructs public download urls for objects uploaded to the
// storage bucket. Uploads themselves go directly from clients via signed
// urls; the server only hands out references.
type URLBuilder struct {
	baseURL string
	bucket  string
}

// NewURLBuilder creates a url builder for the configured bucket
func NewURLBuilder(cfg *config.StorageConfig) *URLBuilder {
	return &URLBuilder{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		bucket:  cfg.Bucket,
	}
}

// PublicURL returns the public download url for an object path
func (b *URLBuilder) PublicURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s",
		b.baseURL, b.bucket, strings.TrimLeft(path, "/"))
}
