package scrycache

import (
	"fmt"
	"net/url"
)

func (c *cache) cardByIDURL(id string) string {
	return c.baseURL + "/cards/" + url.PathEscape(id)
}

func (c *cache) cardNamedURL(name string) string {
	q := url.Values{}
	q.Set("exact", name)
	return c.baseURL + "/cards/named?" + q.Encode()
}

func (c *cache) cardMTGOURL(id int64) string {
	return fmt.Sprintf("%s/cards/mtgo/%d", c.baseURL, id)
}

func (c *cache) bulkDataURL() string {
	return c.baseURL + "/bulk-data"
}
