package photostore

import (
	"testing"
)

func TestIsDayFolder(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"12-03-saturday", true},
		{"01-01-", true},
		{"12-03", false},
		{"saturday-12-03", false},
		{"1-3-short", false},
		{"main-stage", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsDayFolder(tt.name); got != tt.want {
			t.Errorf("IsDayFolder(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestIsPhoto(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"IMG_0042.jpg", true},
		{"IMG_0042.JPEG", true},
		{"shot.png", true},
		{"anim.gif", true},
		{"modern.webp", true},
		{"raw.cr2", false},
		{"notes.txt", false},
		{"noext", false},
		{"folder/IMG.jpg", true},
	}

	for _, tt := range tests {
		if got := IsPhoto(tt.name); got != tt.want {
			t.Errorf("IsPhoto(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestNeedsTranscode(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"IMG.jpg", false},
		{"IMG.JPG", false},
		{"IMG.jpeg", false},
		{"IMG.png", false},
		{"IMG.webp", true},
		{"IMG.gif", true},
	}

	for _, tt := range tests {
		if got := NeedsTranscode(tt.name); got != tt.want {
			t.Errorf("NeedsTranscode(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
