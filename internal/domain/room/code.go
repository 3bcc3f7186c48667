package room

import (
	"crypto/rand"
	"strings"
)

const (
	codeLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codeDigits  = "0123456789"
)

// NewCode generates a random candidate code like "KQX-041". The space is
// 26^3 * 10^3 (~17.6M), so collisions among active rooms stay rare.
func NewCode() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}

	var b strings.Builder
	b.Grow(7)
	for i := 0; i < 3; i++ {
		b.WriteByte(codeLetters[int(buf[i])%len(codeLetters)])
	}
	b.WriteByte('-')
	for i := 3; i < 6; i++ {
		b.WriteByte(codeDigits[int(buf[i])%len(codeDigits)])
	}
	return b.String()
}

// NormalizeCode uppercases user input before lookup; codes are entered
// case-insensitively but stored uppercase.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
