package storagex

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/storecrew/storecrew/internal/common/config"
)

func TestPublicURL(t *testing.T) {
	b := NewURLBuilder(&config.StorageConfig{BaseURL: "https://project.supabase.co/", Bucket: "uploads"})
	assert.Equal(t,
		"https://project.supabase.co/storage/v1/object/public/uploads/voice/memo.m4a",
		b.PublicURL("/voice/memo.m4a"))
	assert.Equal(t,
		"https://project.supabase.co/storage/v1/object/public/uploads/images/a.jpg",
		b.PublicURL("images/a.jpg"))
}
