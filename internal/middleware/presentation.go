package middleware

import "github.com/gin-gonic/gin"

const (
	DefaultLayout = "agency"
	DefaultHeader = "dark position-relative nav-lg"

	presentationKey = "presentation"
)

// Presentation tells the storefront how to frame a page.
type Presentation struct {
	Layout string `json:"layout"`
	Header string `json:"header"`
	Title  string `json:"title,omitempty"`
}

func DefaultPresentation() Presentation {
	return Presentation{Layout: DefaultLayout, Header: DefaultHeader}
}

// Present attaches p to every request of the route or group. Empty fields
// take the defaults.
func Present(p Presentation) gin.HandlerFunc {
	if p.Layout == "" {
		p.Layout = DefaultLayout
	}
	if p.Header == "" {
		p.Header = DefaultHeader
	}
	return func(c *gin.Context) {
		c.Set(presentationKey, p)
		c.Next()
	}
}

// SetTitle overrides the title for this request only.
func SetTitle(c *gin.Context, title string) {
	p := PresentationFrom(c)
	p.Title = title
	c.Set(presentationKey, p)
}

func PresentationFrom(c *gin.Context) Presentation {
	if v, ok := c.Get(presentationKey); ok {
		if p, ok := v.(Presentation); ok {
			return p
		}
	}
	return DefaultPresentation()
}
