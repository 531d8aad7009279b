package utils

import "testing"

func TestBuildObjectAccessURLWithGCSEnv(t *testing.T) {
	t.Setenv("STORAGE_ACCESS_BASE_URL", "")
	t.Setenv("GCS_URL", "storage.googleapis.com")
	t.Setenv("GCS_BUCKET", "civic-media")

	got := BuildObjectAccessURL("problems/a.jpg")
	want := "https://storage.googleapis.com/civic-media/problems/a.jpg"
	if got != want {
		t.Fatalf("BuildObjectAccessURL = %q, want %q", got, want)
	}
}

func TestExtractObjectKeyRoundTrip(t *testing.T) {
	t.Setenv("STORAGE_ACCESS_BASE_URL", "")
	t.Setenv("GCS_URL", "storage.googleapis.com")
	t.Setenv("GCS_BUCKET", "civic-media")

	key := "problems/2e9f/photo.png"
	url := BuildObjectAccessURL(key)
	if got := ExtractObjectKeyFromURL(url); got != key {
		t.Fatalf("round trip: %q -> %q -> %q", key, url, got)
	}
}

func TestExtractObjectKeyFromCommonForms(t *testing.T) {
	t.Setenv("GCS_URL", "")
	t.Setenv("GCS_BUCKET", "")

	cases := []struct {
		in   string
		want string
	}{
		{"gs://civic-media/problems/a.jpg", "problems/a.jpg"},
		{"https://storage.googleapis.com/civic-media/problems/a.jpg", "problems/a.jpg"},
		{"https://civic-media.storage.googleapis.com/problems/a.jpg", "problems/a.jpg"},
		{"https://storage.cloud.google.com/civic-media/problems/a.jpg", "problems/a.jpg"},
		{"problems/a.jpg", "problems/a.jpg"},
		{"problems/../secrets", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := ExtractObjectKeyFromURL(tc.in); got != tc.want {
			t.Fatalf("ExtractObjectKeyFromURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
