package clients

import "time"

// Client is the result of dynamic client registration (RFC 7591). Records
// are created once and never mutated. They also never expire: the store is
// in-memory only, so registrations die with the process, which is acceptable
// for the intended single-tenant deployment.
type Client struct {
	ID           string    `json:"id"`
	Secret       string    `json:"secret"`
	RedirectURIs []string  `json:"redirectURIs"`
	Name         string    `json:"name,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// HasRedirectURI checks whether uri is one of the client's registered
// redirect URIs.
func (c *Client) HasRedirectURI(uri string) bool {
	for _, u := range c.RedirectURIs {
		if u == uri {
			return true
		}
	}
	return false
}
