package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEndpointURL(t *testing.T) {
	tests := []struct {
		endpoint string
		useSSL   bool
		want     string
	}{
		{"", true, ""},
		{"minio:9000", false, "http://minio:9000"},
		{"spaces.example.com", true, "https://spaces.example.com"},
		{"http://localhost:9000", true, "http://localhost:9000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, endpointURL(tt.endpoint, tt.useSSL), tt.endpoint)
	}
}

func TestDisabledStorage(t *testing.T) {
	s := NewDisabledStorage()
	ctx := context.Background()

	assert.ErrorIs(t, s.PutObject(ctx, "k", "application/json", []byte("{}")), ErrDisabled)
	_, err := s.GeneratePresignedDownloadURL(ctx, "k", time.Minute)
	assert.ErrorIs(t, err, ErrDisabled)
	assert.ErrorIs(t, s.DeleteObject(ctx, "k"), ErrDisabled)
}
