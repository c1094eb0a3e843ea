package lnurl

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"unicode/utf8"

	"github.com/lightningnetwork/lnd/lntypes"
)

// AESParams is an "aes" success action: a message encrypted with
// AES-256-CBC under the payment preimage, revealed once the invoice is paid.
type AESParams struct {
	// Description is shown to the payer in the clear.
	Description string `json:"description"`

	// Ciphertext is the base64 encoded, PKCS#7 padded ciphertext.
	Ciphertext string `json:"ciphertext"`

	// IV is the base64 encoded 16 byte initialization vector.
	IV string `json:"iv"`
}

// NewAESParams encrypts plaintext under preimage with a fresh random IV.
func NewAESParams(description, plaintext string,
	preimage lntypes.Preimage) (*AESParams, error) {

	var iv [aes.BlockSize]byte
	if _, err := rand.Read(iv[:]); err != nil {
		return nil, fmt.Errorf("unable to generate iv: %w", err)
	}

	return encryptAES(description, plaintext, preimage, iv)
}

func encryptAES(description, plaintext string, preimage lntypes.Preimage,
	iv [aes.BlockSize]byte) (*AESParams, error) {

	block, err := aes.NewCipher(preimage[:])
	if err != nil {
		return nil, err
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv[:]).CryptBlocks(ciphertext, padded)

	return &AESParams{
		Description: description,
		Ciphertext:  base64.StdEncoding.EncodeToString(ciphertext),
		IV:          base64.StdEncoding.EncodeToString(iv[:]),
	}, nil
}

// Decrypt recovers the plaintext using the payment preimage. Every failure,
// whether a malformed IV, bad padding or a non UTF-8 result, is reported as
// ErrDecryptFailed.
func (a *AESParams) Decrypt(preimage lntypes.Preimage) (string, error) {
	iv, err := base64.StdEncoding.DecodeString(a.IV)
	if err != nil || len(iv) != aes.BlockSize {
		return "", ErrDecryptFailed
	}

	ciphertext, err := base64.StdEncoding.DecodeString(a.Ciphertext)
	if err != nil || len(ciphertext) == 0 ||
		len(ciphertext)%aes.BlockSize != 0 {

		return "", ErrDecryptFailed
	}

	block, err := aes.NewCipher(preimage[:])
	if err != nil {
		return "", ErrDecryptFailed
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	plaintext, ok := pkcs7Unpad(plaintext, aes.BlockSize)
	if !ok || !utf8.Valid(plaintext) {
		return "", ErrDecryptFailed
	}

	return string(plaintext), nil
}

func pkcs7Pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize

	padded := make([]byte, len(b), len(b)+n)
	copy(padded, b)
	for i := 0; i < n; i++ {
		padded = append(padded, byte(n))
	}

	return padded
}

// pkcs7Unpad strips PKCS#7 padding, checking every padding byte.
func pkcs7Unpad(b []byte, blockSize int) ([]byte, bool) {
	if len(b) == 0 || len(b)%blockSize != 0 {
		return nil, false
	}

	n := int(b[len(b)-1])
	if n == 0 || n > blockSize {
		return nil, false
	}

	good := 1
	for i := len(b) - n; i < len(b); i++ {
		good &= subtle.ConstantTimeByteEq(b[i], byte(n))
	}
	if good != 1 {
		return nil, false
	}

	return b[:len(b)-n], true
}
