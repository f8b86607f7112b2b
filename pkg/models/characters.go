package models

import (
	"strings"
)

// ArtStyle is one entry of the art style catalogue offered during configuration
type ArtStyle struct {
	ID          string
	Title       string
	Description string
}

// ArtStyles is the catalogue shown in the configuration panel, in display order
var ArtStyles = []ArtStyle{
	{ID: "watercolor-fantasy", Title: "Watercolor Fantasy", Description: "Soft, dreamy illustrations"},
	{ID: "digital-cartoon", Title: "Digital Cartoon", Description: "Bright, colorful style"},
	{ID: "realistic-art", Title: "Realistic Art", Description: "Detailed, lifelike images"},
	{ID: "minimalist", Title: "Minimalist", Description: "Simple, clean designs"},
}

// ArtStyleIndex returns the catalogue position of id, or -1
func ArtStyleIndex(id string) int {
	for i, s := range ArtStyles {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// CycleArtStyle moves delta positions through the catalogue, wrapping at both ends.
// An unknown id starts from the first entry.
func CycleArtStyle(id string, delta int) string {
	n := len(ArtStyles)
	if n == 0 {
		return id
	}
	i := ArtStyleIndex(id)
	if i < 0 {
		return ArtStyles[0].ID
	}
	i = ((i+delta)%n + n) % n
	return ArtStyles[i].ID
}

// NormalizeCharacterIDs trims ids, drops empty ones and removes duplicates,
// keeping the first occurrence so the order stays stable
func NormalizeCharacterIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// ParseCharacterIDs splits a comma separated list typed by the user
func ParseCharacterIDs(s string) []string {
	return NormalizeCharacterIDs(strings.Split(s, ","))
}

// FormatCharacterIDs is the inverse of ParseCharacterIDs
func FormatCharacterIDs(ids []string) string {
	return strings.Join(ids, ", ")
}
