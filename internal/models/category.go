package models

type Category struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	ImageURL string `json:"image_url,omitempty"`
}

func (c *Category) RefreshSlug() {
	c.Slug = Slugify(c.Name)
}

// CategoryCount is one row of the collection page.
type CategoryCount struct {
	Category Category `json:"category"`
	Count    int      `json:"count"`
}
