// Package catalog serves the static background template descriptors offered
// alongside try-on generation.
package catalog

// Background describes one selectable backdrop template.
type Background struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	ImageURL     string `json:"imageUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// Backgrounds returns the built-in template catalog.
func Backgrounds() []Background {
	return []Background{
		{
			ID:           "street",
			Name:         "Shopping street",
			Category:     "outdoor",
			ImageURL:     "https://via.placeholder.com/800x600/2c3e50/ffffff?text=Street+Scene",
			ThumbnailURL: "https://via.placeholder.com/200x200/2c3e50/ffffff?text=Street",
		},
		{
			ID:           "home",
			Name:         "Home interior",
			Category:     "indoor",
			ImageURL:     "https://via.placeholder.com/800x600/27ae60/ffffff?text=Home+Environment",
			ThumbnailURL: "https://via.placeholder.com/200x200/27ae60/ffffff?text=Home",
		},
		{
			ID:           "office",
			Name:         "Office",
			Category:     "indoor",
			ImageURL:     "https://via.placeholder.com/800x600/8e44ad/ffffff?text=Office+Scene",
			ThumbnailURL: "https://via.placeholder.com/200x200/8e44ad/ffffff?text=Office",
		},
		{
			ID:           "studio",
			Name:         "Photo studio",
			Category:     "studio",
			ImageURL:     "https://via.placeholder.com/800x600/e74c3c/ffffff?text=Photo+Studio",
			ThumbnailURL: "https://via.placeholder.com/200x200/e74c3c/ffffff?text=Studio",
		},
	}
}
