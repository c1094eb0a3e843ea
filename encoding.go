package lnurl

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

const humanReadablePart = "lnurl"

// LnURL is a decoded LNURL. Two LnURLs are equal if they wrap the same URL,
// regardless of the case their bech32 form was written in.
type LnURL struct {
	// URL is the absolute URL the LNURL points to.
	URL string
}

// FromURL wraps an absolute URL.
func FromURL(rawURL string) (LnURL, error) {
	if err := checkAbsolute(rawURL); err != nil {
		return LnURL{}, err
	}

	return LnURL{URL: rawURL}, nil
}

// Decode decodes a bech32 LNURL string such as "lnurl1dp68gurn8ghj7...".
func Decode(text string) (LnURL, error) {
	u, err := DecodeURL(text)
	if err != nil {
		return LnURL{}, err
	}

	return FromURL(u)
}

// Encode returns the lowercase bech32 form of the LNURL.
func (l LnURL) Encode() (string, error) {
	return EncodeURL(l.URL)
}

// ParsedURL returns the wrapped URL as a *url.URL.
func (l LnURL) ParsedURL() (*url.URL, error) {
	return url.Parse(l.URL)
}

// IsLogin reports whether the URL is an LNURL-auth challenge. Login has no
// JSON tag, it is implied by a tag=login query parameter carrying a k1.
func (l LnURL) IsLogin() bool {
	u, err := url.Parse(l.URL)
	if err != nil {
		return false
	}

	q := u.Query()
	return q.Get("tag") == string(TagLogin) && q.Get("k1") != ""
}

// K1 returns the k1 query parameter of a login LNURL.
func (l LnURL) K1() string {
	u, err := url.Parse(l.URL)
	if err != nil {
		return ""
	}

	return u.Query().Get("k1")
}

// DecodeURL decodes a bech32 LNURL into the URL it carries. The text must
// start with "lnurl" in either case. Any checksum, alphabet or payload
// failure is reported as ErrInvalidLnURL.
func DecodeURL(text string) (string, error) {
	if !strings.HasPrefix(strings.ToLower(text), humanReadablePart) {
		return "", ErrInvalidLnURL
	}

	hrp, data, err := bech32.DecodeNoLimit(text)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidLnURL, err)
	}

	if hrp != humanReadablePart {
		return "", fmt.Errorf("%w: incorrect hrp, expected '%s', "+
			"got '%s'", ErrInvalidLnURL, humanReadablePart, hrp)
	}

	data, err = bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidLnURL, err)
	}

	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: payload is not utf-8",
			ErrInvalidLnURL)
	}

	return string(data), nil
}

// EncodeURL bech32 encodes a URL with the "lnurl" human readable part. The
// result is lowercase; upper case it for QR codes.
func EncodeURL(rawURL string) (string, error) {
	converted, err := bech32.ConvertBits([]byte(rawURL), 8, 5, true)
	if err != nil {
		return "", err
	}

	return bech32.Encode(humanReadablePart, converted)
}

// Parse resolves any of the supported LNURL input forms to an LnURL:
//
//   - bech32 "lnurl1..." in either case, optionally behind "lightning:"
//   - LUD-17 "lnurlp://", "lnurlw://", "lnurlc://" and "keyauth://" URLs
//   - lightning addresses, "user@domain"
//   - plain https URLs
func Parse(input string) (LnURL, error) {
	input = strings.TrimSpace(input)

	lower := strings.ToLower(input)
	if strings.HasPrefix(lower, "lightning:") {
		input = input[len("lightning:"):]
		lower = lower[len("lightning:"):]
	}

	switch {
	case strings.HasPrefix(lower, humanReadablePart+"1"):
		return Decode(input)

	case hasLUD17Scheme(lower):
		return fromLUD17(input)

	case strings.HasPrefix(lower, "https://"),
		strings.HasPrefix(lower, "http://"):

		return FromURL(input)

	case strings.Contains(input, "@"):
		addr, err := ParseLightningAddress(input)
		if err != nil {
			return LnURL{}, err
		}

		return addr.LnURL(), nil

	default:
		return LnURL{}, fmt.Errorf("%w: unsupported scheme",
			ErrInvalidLnURL)
	}
}

var lud17Schemes = []string{"lnurlp", "lnurlw", "lnurlc", "keyauth"}

func hasLUD17Scheme(lower string) bool {
	for _, scheme := range lud17Schemes {
		if strings.HasPrefix(lower, scheme+"://") {
			return true
		}
	}

	return false
}

// fromLUD17 swaps a LUD-17 scheme for https, or http for onion services.
func fromLUD17(input string) (LnURL, error) {
	u, err := url.Parse(input)
	if err != nil {
		return LnURL{}, fmt.Errorf("%w: %v", ErrInvalidLnURL, err)
	}

	u.Scheme = "https"
	if strings.HasSuffix(u.Hostname(), ".onion") {
		u.Scheme = "http"
	}

	return FromURL(u.String())
}

func checkAbsolute(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLnURL, err)
	}

	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%w: '%s' is not an absolute url",
			ErrInvalidLnURL, rawURL)
	}

	return nil
}
