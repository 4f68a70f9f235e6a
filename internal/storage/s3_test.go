package storage

import "testing"

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		want     string
	}{
		{"plain host", "s3.amazonaws.com", "s3.amazonaws.com"},
		{"https prefix", "https://s3.amazonaws.com", "s3.amazonaws.com"},
		{"http prefix", "http://localhost:9000", "localhost:9000"},
		{"trailing slash", "s3.amazonaws.com/", "s3.amazonaws.com"},
		{"path stripped", "https://account.r2.cloudflarestorage.com/bucket", "account.r2.cloudflarestorage.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeEndpoint(tt.endpoint); got != tt.want {
				t.Errorf("normalizeEndpoint(%q) = %q, want %q", tt.endpoint, got, tt.want)
			}
		})
	}
}

func TestDetectStorageType(t *testing.T) {
	tests := []struct {
		endpoint string
		want     StorageType
	}{
		{"account.r2.cloudflarestorage.com", StorageTypeR2},
		{"s3.us-east-1.amazonaws.com", StorageTypeS3},
		{"localhost:9000", StorageTypeS3Compatible},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			if got := detectStorageType(tt.endpoint); got != tt.want {
				t.Errorf("detectStorageType(%q) = %q, want %q", tt.endpoint, got, tt.want)
			}
		})
	}
}
