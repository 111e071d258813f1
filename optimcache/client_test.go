package optimcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Endpoint
		wantErr bool
	}{
		{
			name: "https with all params",
			raw:  "https://s3.example.org/?keyId=AK&secretAccessKey=SK&bucketName=cache",
			want: Endpoint{Host: "s3.example.org", KeyID: "AK", SecretKey: "SK", Bucket: "cache", Secure: true},
		},
		{
			name: "http is insecure",
			raw:  "http://localhost:9000/?keyId=AK&secretAccessKey=SK&bucketName=b",
			want: Endpoint{Host: "localhost:9000", KeyID: "AK", SecretKey: "SK", Bucket: "b", Secure: false},
		},
		{
			name:    "missing bucket",
			raw:     "https://s3.example.org/?keyId=AK&secretAccessKey=SK",
			wantErr: true,
		},
		{
			name:    "missing credentials",
			raw:     "https://s3.example.org/?bucketName=cache",
			wantErr: true,
		},
		{
			name:    "no host",
			raw:     "?keyId=AK&secretAccessKey=SK&bucketName=cache",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseURL(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUsableVersion(t *testing.T) {
	tests := []struct {
		name   string
		stored string
		want   string
		anyOK  bool
		usable bool
	}{
		{"exact match", "v2", "v2", false, true},
		{"version mismatch", "v1", "v2", false, false},
		{"no tag on object", "", "v2", false, false},
		{"any version accepts mismatch", "v1", "v2", true, true},
		{"any version accepts untagged", "", "v2", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.usable, usableVersion(tt.stored, tt.want, tt.anyOK))
		})
	}
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "mp4/high/abc123", VideoKey("mp4", "high", "abc123"))
	assert.Equal(t, "thumbnails/low/abc123", ThumbnailKey("low", "abc123"))
}
