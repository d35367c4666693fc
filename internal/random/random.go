package random

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

var (
	ErrInvalidLength = fmt.Errorf("invalid length")
)

// Random produces identifiers for exchanges.
type Random interface {
	Hex(n int) (string, error)
}

type random struct {
	reader io.Reader
}

func New() Random {
	return &random{reader: rand.Reader}
}

// Hex reads n random bytes and returns them hex encoded, so the result is
// 2n characters long.
func (ran *random) Hex(n int) (string, error) {
	if n < 0 {
		return "", ErrInvalidLength
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(ran.reader, b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
