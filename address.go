package lnurl

import (
	"fmt"
	"strings"
	"unicode"
)

// LightningAddress is a LUD-16 internet identifier, <user>@<domain>.
type LightningAddress struct {
	User   string
	Domain string
}

// ParseLightningAddress parses and validates a lightning address.
func ParseLightningAddress(addr string) (*LightningAddress, error) {
	if strings.IndexFunc(addr, unicode.IsSpace) != -1 {
		return nil, ErrInvalidLightningAddress
	}

	parts := strings.Split(addr, "@")
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: expected the form "+
			"<username>@<domain>", ErrInvalidLightningAddress)
	}

	user, domain := parts[0], strings.ToLower(parts[1])
	if user == "" || strings.ContainsAny(user, "/?#") {
		return nil, fmt.Errorf("%w: invalid username '%s'",
			ErrInvalidLightningAddress, parts[0])
	}

	if !validDomain(domain) {
		return nil, fmt.Errorf("%w: invalid domain '%s'",
			ErrInvalidLightningAddress, parts[1])
	}

	return &LightningAddress{User: user, Domain: domain}, nil
}

func validDomain(domain string) bool {
	host := domain
	if i := strings.LastIndexByte(domain, ':'); i != -1 {
		host = domain[:i]
	}

	if host == "localhost" {
		return true
	}

	if !strings.Contains(host, ".") || strings.HasPrefix(host, ".") ||
		strings.HasSuffix(host, ".") {

		return false
	}

	for _, r := range host {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-',
			r == '.':

		default:
			return false
		}
	}

	return true
}

// LNURLPURL returns the well-known LNURL-pay endpoint of the address. Onion
// domains are reached over plain http.
func (a *LightningAddress) LNURLPURL() string {
	scheme := "https"
	if strings.HasSuffix(a.Domain, ".onion") {
		scheme = "http"
	}

	return fmt.Sprintf("%s://%s/.well-known/lnurlp/%s", scheme, a.Domain,
		a.User)
}

// LnURL returns the LNURL the address resolves to.
func (a *LightningAddress) LnURL() LnURL {
	return LnURL{URL: a.LNURLPURL()}
}

// String returns the address in its <user>@<domain> form.
func (a *LightningAddress) String() string {
	return a.User + "@" + a.Domain
}
