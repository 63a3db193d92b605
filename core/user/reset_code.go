package user

import (
	"crypto/rand"
	"io"
	"strings"

	"github.com/pkg/errors"
)

const (
	resetCodeLen      = 6
	resetCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// randReader is the source of reset codes. mockable
var randReader io.Reader = rand.Reader

// newResetCode returns a random code of resetCodeLen characters from resetCodeAlphabet.
func newResetCode() (string, error) {
	// bytes >= maxByte are rejected so that every character is equally likely
	maxByte := byte(256 - 256%len(resetCodeAlphabet))

	code := make([]byte, 0, resetCodeLen)
	buf := make([]byte, resetCodeLen*2)
	for len(code) < resetCodeLen {
		if _, err := io.ReadFull(randReader, buf); err != nil {
			return "", errors.Wrap(err, "reading random bytes")
		}
		for _, b := range buf {
			if b >= maxByte {
				continue
			}
			code = append(code, resetCodeAlphabet[int(b)%len(resetCodeAlphabet)])
			if len(code) == resetCodeLen {
				break
			}
		}
	}
	return string(code), nil
}

func isResetCodeFormat(code string) bool {
	if len(code) != resetCodeLen {
		return false
	}
	for _, c := range code {
		if !strings.ContainsRune(resetCodeAlphabet, c) {
			return false
		}
	}
	return true
}
