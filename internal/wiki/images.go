package wiki

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// PageName converts an item name to the form used in wiki file URLs:
// spaces become underscores and the result is path-escaped, so an
// apostrophe is sent as %27.
func PageName(name string) string {
	return url.PathEscape(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))
}

// ImageURL is the full-size inventory icon, e.g. /images/Blue_moon.png
func (c *Client) ImageURL(name string) string {
	return fmt.Sprintf("%s/images/%s.png", c.baseURL, PageName(name))
}

// DetailImageURL is the large rendered variant, e.g. /images/Blue_moon_detail.png
func (c *Client) DetailImageURL(name string) string {
	return fmt.Sprintf("%s/images/%s_detail.png", c.baseURL, PageName(name))
}

// ThumbURL is a server-scaled thumbnail of the inventory icon. pixelated asks
// the wiki to upscale without smoothing.
func (c *Client) ThumbURL(name string, width int, pixelated bool) string {
	w := PageName(name)
	u := fmt.Sprintf("%s/images/thumb/%s/%dpx-%s.png", c.baseURL, w, width, w)
	if pixelated {
		u += "?pixelated=true"
	}
	return u
}

// FetchImage downloads url with the image timeout. Non-200 responses are
// returned, not treated as errors; acceptance is up to the caller.
func (c *Client) FetchImage(ctx context.Context, url string) (*Response, error) {
	return c.get(ctx, url, c.imageTimeout)
}
