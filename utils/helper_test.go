package utils

import "testing"

func TestNilIfEmpty(t *testing.T) {
	if got := NilIfEmpty(0); got != nil {
		t.Fatalf("NilIfEmpty(0) = %v, want nil", got)
	}
	if got := NilIfEmpty(42); got == nil || *got != 42 {
		t.Fatalf("NilIfEmpty(42) = %v, want pointer to 42", got)
	}
	if got := NilIfEmpty(""); got != nil {
		t.Fatalf(`NilIfEmpty("") = %v, want nil`, got)
	}
}

func TestGetStorageProvider(t *testing.T) {
	t.Setenv("STORAGE_PROVIDER", "")
	if got := GetStorageProvider(); got != StorageProviderGCS {
		t.Fatalf("GetStorageProvider() = %q, want %q", got, StorageProviderGCS)
	}

	t.Setenv("STORAGE_PROVIDER", "  S3 ")
	if got := GetStorageProvider(); got != "s3" {
		t.Fatalf("GetStorageProvider() = %q, want %q", got, "s3")
	}
}
