package lnurl

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"golang.org/x/net/idna"
)

// AuthPurpose is the hardened first child of every LNURL-auth path.
const AuthPurpose = 138

// DerivationPath is a BIP32 path as a list of child numbers. Child numbers
// at or above hdkeychain.HardenedKeyStart are hardened.
type DerivationPath []uint32

// String formats the path as m/138'/1588488367/511787106'/...
func (p DerivationPath) String() string {
	var b strings.Builder
	b.WriteString("m")
	for _, child := range p {
		b.WriteString("/")
		if child >= hdkeychain.HardenedKeyStart {
			b.WriteString(strconv.FormatUint(
				uint64(child-hdkeychain.HardenedKeyStart), 10,
			))
			b.WriteString("'")

			continue
		}

		b.WriteString(strconv.FormatUint(uint64(child), 10))
	}

	return b.String()
}

// Derive walks the path down from key.
func (p DerivationPath) Derive(key *hdkeychain.ExtendedKey) (
	*hdkeychain.ExtendedKey, error) {

	var err error
	for _, child := range p {
		key, err = key.Derive(child)
		if err != nil {
			return nil, err
		}
	}

	return key, nil
}

// DeriveAuthPath derives the LUD-05 linking key path for the service at u:
// m/138'/<c0>/<c1>/<c2>/<c3>, where c0..c3 are the first 16 bytes of
// hmacSha256(hashingKey, host) read as big-endian uint32 child numbers.
func DeriveAuthPath(hashingKey [32]byte, u *url.URL) (DerivationPath,
	error) {

	host, err := authHost(u)
	if err != nil {
		return nil, err
	}

	mac := hmac.New(sha256.New, hashingKey[:])
	mac.Write([]byte(host))
	derivationMat := mac.Sum(nil)

	path := make(DerivationPath, 0, 5)
	path = append(path, hdkeychain.HardenedKeyStart+AuthPurpose)
	for i := 0; i < 4; i++ {
		path = append(path, binary.BigEndian.Uint32(
			derivationMat[i*4:(i+1)*4],
		))
	}

	return path, nil
}

// hostProfile maps internationalized domain names to their ASCII form the
// way URL parsers do. Labels such as "_service" stay allowed.
var hostProfile = idna.New(
	idna.MapForLookup(), idna.StrictDomainName(false),
	idna.Transitional(false),
)

// authHost is the full ASCII domain name of the service, without port. IPv6
// hosts keep their brackets.
func authHost(u *url.URL) (string, error) {
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", ErrNoHost
	}

	if strings.Contains(host, ":") {
		return "[" + host + "]", nil
	}

	ascii, err := hostProfile.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("%w: invalid host '%s': %v",
			ErrInvalidLnURL, host, err)
	}

	return ascii, nil
}

// HashingKey returns the wallet's LUD-05 hashing key, the private key at
// m/138'/0.
func HashingKey(master *hdkeychain.ExtendedKey) ([32]byte, error) {
	var hashingKey [32]byte

	path := DerivationPath{hdkeychain.HardenedKeyStart + AuthPurpose, 0}
	key, err := path.Derive(master)
	if err != nil {
		return hashingKey, fmt.Errorf("unable to derive hashing key: "+
			"%w", err)
	}

	priv, err := key.ECPrivKey()
	if err != nil {
		return hashingKey, err
	}
	copy(hashingKey[:], priv.Serialize())

	return hashingKey, nil
}

// LinkingKey derives the service specific linking key for the login LNURL.
func LinkingKey(master *hdkeychain.ExtendedKey, l LnURL) (*btcec.PrivateKey,
	error) {

	u, err := l.ParsedURL()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLnURL, err)
	}

	hashingKey, err := HashingKey(master)
	if err != nil {
		return nil, err
	}

	path, err := DeriveAuthPath(hashingKey, u)
	if err != nil {
		return nil, err
	}

	log.Debugf("Deriving linking key for %s at %v", u.Hostname(), path)

	key, err := path.Derive(master)
	if err != nil {
		return nil, fmt.Errorf("unable to derive linking key: %w", err)
	}

	return key.ECPrivKey()
}

// SignChallenge signs the hex encoded 32 byte k1 challenge.
func SignChallenge(key *btcec.PrivateKey, k1 string) (*ecdsa.Signature,
	error) {

	challenge, err := hex.DecodeString(k1)
	if err != nil {
		return nil, fmt.Errorf("invalid k1: %w", err)
	}
	if len(challenge) != 32 {
		return nil, fmt.Errorf("invalid k1 length of %d, want 32",
			len(challenge))
	}

	return ecdsa.Sign(key, challenge), nil
}
