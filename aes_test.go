package lnurl

import (
	"bytes"
	"crypto/aes"
	"encoding/base64"
	"net/url"
	"strings"
	"testing"

	"github.com/lightningnetwork/lnd/lntypes"
	"github.com/stretchr/testify/require"
)

var testPreimage = lntypes.Preimage{
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
}

func TestAESRoundTrip(t *testing.T) {
	t.Parallel()

	for _, plaintext := range []string{
		"hello world",
		"",
		"exactly sixteen!",
		strings.Repeat("⚡", 40),
	} {
		params, err := NewAESParams("description", plaintext, testPreimage)
		require.NoError(t, err)
		require.Equal(t, "description", params.Description)

		iv, err := base64.StdEncoding.DecodeString(params.IV)
		require.NoError(t, err)
		require.Len(t, iv, aes.BlockSize)

		decrypted, err := params.Decrypt(testPreimage)
		require.NoError(t, err)
		require.Equal(t, plaintext, decrypted)
	}
}

func TestAESFreshIV(t *testing.T) {
	t.Parallel()

	a, err := NewAESParams("", "hello world", testPreimage)
	require.NoError(t, err)

	b, err := NewAESParams("", "hello world", testPreimage)
	require.NoError(t, err)

	require.NotEqual(t, a.IV, b.IV)
	require.NotEqual(t, a.Ciphertext, b.Ciphertext)
}

func TestAESWrongPreimage(t *testing.T) {
	t.Parallel()

	var iv [aes.BlockSize]byte
	params, err := encryptAES("", "hello world", testPreimage, iv)
	require.NoError(t, err)

	// A wrong key almost always breaks the padding. Either way it must
	// never reveal the plaintext.
	for i := byte(2); i < 10; i++ {
		var wrong lntypes.Preimage
		copy(wrong[:], bytes.Repeat([]byte{i}, 32))

		plaintext, err := params.Decrypt(wrong)
		if err != nil {
			require.ErrorIs(t, err, ErrDecryptFailed)
			continue
		}
		require.NotEqual(t, "hello world", plaintext)
	}
}

// TestAESDecryptTampered checks that malformed or modified success actions
// are rejected. The plaintext "hello world" fills a single block padded with
// five 0x05 bytes, and flipping IV bits flips the same plaintext bits.
func TestAESDecryptTampered(t *testing.T) {
	t.Parallel()

	var iv [aes.BlockSize]byte
	params, err := encryptAES("", "hello world", testPreimage, iv)
	require.NoError(t, err)

	mutateIV := func(f func(iv []byte)) func(*AESParams) {
		return func(p *AESParams) {
			raw, _ := base64.StdEncoding.DecodeString(p.IV)
			f(raw)
			p.IV = base64.StdEncoding.EncodeToString(raw)
		}
	}

	tests := []struct {
		name    string
		mutator func(*AESParams)
	}{
		{
			name: "last padding byte changed",
			mutator: mutateIV(func(iv []byte) {
				iv[15] ^= 0x01
			}),
		},
		{
			name: "padding longer than a block",
			mutator: mutateIV(func(iv []byte) {
				iv[15] ^= 0x05 ^ 0x11
			}),
		},
		{
			name: "zero padding",
			mutator: mutateIV(func(iv []byte) {
				iv[15] ^= 0x05
			}),
		},
		{
			name: "plaintext not utf-8",
			mutator: mutateIV(func(iv []byte) {
				iv[0] ^= 0x80
			}),
		},
		{
			name: "short iv",
			mutator: func(p *AESParams) {
				p.IV = base64.StdEncoding.EncodeToString(
					make([]byte, 8),
				)
			},
		},
		{
			name: "iv not base64",
			mutator: func(p *AESParams) {
				p.IV = "!!"
			},
		},
		{
			name: "ciphertext not base64",
			mutator: func(p *AESParams) {
				p.Ciphertext = "!!"
			},
		},
		{
			name: "empty ciphertext",
			mutator: func(p *AESParams) {
				p.Ciphertext = ""
			},
		},
		{
			name: "partial block",
			mutator: func(p *AESParams) {
				raw, _ := base64.StdEncoding.DecodeString(
					p.Ciphertext,
				)
				p.Ciphertext = base64.StdEncoding.EncodeToString(
					raw[:len(raw)-1],
				)
			},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			tampered := *params
			test.mutator(&tampered)

			_, err := tampered.Decrypt(testPreimage)
			require.ErrorIs(t, err, ErrDecryptFailed)
		})
	}

	// The untouched params still decrypt.
	plaintext, err := params.Decrypt(testPreimage)
	require.NoError(t, err)
	require.Equal(t, "hello world", plaintext)
}

func TestSuccessActionFromParams(t *testing.T) {
	t.Parallel()

	str := func(s string) *string { return &s }
	link, err := url.Parse("https://service.com/thanks")
	require.NoError(t, err)

	tests := []struct {
		name   string
		params SuccessActionParams
		expect SuccessAction
	}{
		{
			name: "message",
			params: SuccessActionParams{
				Tag: "message", Message: str("thanks"),
			},
			expect: MessageAction{Message: "thanks"},
		},
		{
			name: "url",
			params: SuccessActionParams{
				Tag:         "url",
				URL:         str("https://service.com/thanks"),
				Description: str("receipt"),
			},
			expect: URLAction{URL: link, Description: "receipt"},
		},
		{
			name: "aes",
			params: SuccessActionParams{
				Tag:         "aes",
				Description: str("secret"),
				Ciphertext:  str("Y2lwaGVy"),
				IV:          str("aXY="),
			},
			expect: &AESParams{
				Description: "secret",
				Ciphertext:  "Y2lwaGVy",
				IV:          "aXY=",
			},
		},
		{
			name:   "message without message",
			params: SuccessActionParams{Tag: "message"},
			expect: UnknownAction{
				Raw: SuccessActionParams{Tag: "message"},
			},
		},
		{
			name: "relative url",
			params: SuccessActionParams{
				Tag: "url", URL: str("/thanks"),
				Description: str("receipt"),
			},
			expect: UnknownAction{Raw: SuccessActionParams{
				Tag: "url", URL: str("/thanks"),
				Description: str("receipt"),
			}},
		},
		{
			name: "aes without iv",
			params: SuccessActionParams{
				Tag: "aes", Description: str("secret"),
				Ciphertext: str("Y2lwaGVy"),
			},
			expect: UnknownAction{Raw: SuccessActionParams{
				Tag: "aes", Description: str("secret"),
				Ciphertext: str("Y2lwaGVy"),
			}},
		},
		{
			name: "unknown tag",
			params: SuccessActionParams{
				Tag: "confetti", Message: str("🎉"),
			},
			expect: UnknownAction{Raw: SuccessActionParams{
				Tag: "confetti", Message: str("🎉"),
			}},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			action := SuccessActionFromParams(test.params)
			require.Equal(t, test.expect, action)
			require.Equal(t, test.params.Tag, action.ActionTag())

			// Known variants convert back to the params they came
			// from.
			require.Equal(t, test.params, action.Params())
		})
	}
}
