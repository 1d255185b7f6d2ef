// Package randtoken generates the opaque random strings the proxy hands out:
// authorization codes, client identifiers and client secrets. All values come
// from crypto/rand and are base64url encoded so they are safe in URLs and
// form bodies without further escaping.
package randtoken

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// New returns a random base64url string derived from n random bytes.
func New(n int) string {
	b := make([]byte, n)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// Code mints a proxy-local authorization code.
func Code() string {
	return fmt.Sprintf("code_%s", New(32))
}

// ClientID mints an identifier for a dynamically registered client.
func ClientID() string {
	return fmt.Sprintf("client_%s", New(16))
}

// ClientSecret mints a secret for a dynamically registered client.
func ClientSecret() string {
	return fmt.Sprintf("secret_%s", New(32))
}
