package signaling

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
)

// DefaultCodeLength is the number of characters in a generated room code.
const DefaultCodeLength = 6

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Bytes at or above this value are discarded so every symbol of codeAlphabet
// is equally likely (252 = 7 * 36).
const codeRejectAbove = 256 - (256 % len(codeAlphabet))

// CodeGenerator produces random room codes over A-Z0-9.
// It does not check uniqueness; Registry.Create does that.
type CodeGenerator struct {
	length int
	src    io.Reader
}

// NewCodeGenerator returns a generator producing codes of the given length
// from src. If length <= 0, DefaultCodeLength is used. A nil src means
// crypto/rand.Reader.
func NewCodeGenerator(length int, src io.Reader) *CodeGenerator {
	if length <= 0 {
		length = DefaultCodeLength
	}
	if src == nil {
		src = rand.Reader
	}
	return &CodeGenerator{length: length, src: src}
}

// Length returns the length of the codes this generator produces.
func (g *CodeGenerator) Length() int {
	return g.length
}

// Generate returns one random code. It fails only if the byte source does.
func (g *CodeGenerator) Generate() (RoomCode, error) {
	out := make([]byte, 0, g.length)
	buf := make([]byte, g.length)
	for len(out) < g.length {
		if _, err := io.ReadFull(g.src, buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= codeRejectAbove {
				continue
			}
			out = append(out, codeAlphabet[int(b)%len(codeAlphabet)])
			if len(out) == g.length {
				break
			}
		}
	}
	return RoomCode(out), nil
}

// NormalizeRoomCode trims and upper-cases a client supplied code.
func NormalizeRoomCode(code string) RoomCode {
	return RoomCode(strings.ToUpper(strings.TrimSpace(code)))
}

// ValidRoomCode reports whether code has the given length and only contains
// characters a generator can produce.
func ValidRoomCode(code RoomCode, length int) bool {
	if len(code) != length {
		return false
	}
	for i := 0; i < len(code); i++ {
		if !strings.ContainsRune(codeAlphabet, rune(code[i])) {
			return false
		}
	}
	return true
}
