package scraper

import "github.com/gosimple/slug"

// Slug derives the URL-safe identifier for a titled entity. The fixed
// 4-character id suffix keeps identically-titled items from colliding
// while staying human-readable.
func Slug(title, id string) string {
	return slug.Make(title) + "-" + last4(id)
}

func last4(id string) string {
	if len(id) <= 4 {
		return id
	}
	return id[len(id)-4:]
}
