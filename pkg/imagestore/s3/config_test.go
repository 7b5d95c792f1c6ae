package s3

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "valid minimal",
			cfg:  Config{Bucket: "my-bucket"},
		},
		{
			name: "valid with explicit credentials",
			cfg: Config{
				Bucket:          "my-bucket",
				AccessKeyID:     "AKIA123",
				SecretAccessKey: "secret",
			},
		},
		{
			name:    "missing bucket",
			cfg:     Config{},
			wantErr: "bucket name is required",
		},
		{
			name:    "access key without secret",
			cfg:     Config{Bucket: "b", AccessKeyID: "AKIA123"},
			wantErr: "must be provided together",
		},
		{
			name:    "secret without access key",
			cfg:     Config{Bucket: "b", SecretAccessKey: "secret"},
			wantErr: "must be provided together",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/png", contentType("image_1.png"))
	assert.Equal(t, "image/jpeg", contentType("photo.JPG"))
	assert.Equal(t, "", contentType("noext"))
}
