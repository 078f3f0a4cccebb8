package helpers

import (
	"math/rand"
	"strings"
)

// Fuzzer generates hostile inputs for validation tests
type Fuzzer struct {
	rnd *rand.Rand
}

// NewFuzzer creates a fuzzer with a fixed seed so failures reproduce.
func NewFuzzer(seed int64) *Fuzzer {
	return &Fuzzer{rnd: rand.New(rand.NewSource(seed))}
}

// FuzzTokenID returns url tokens and column slugs that must be rejected.
func (f *Fuzzer) FuzzTokenID() []string {
	ids := []string{
		"",
		".",
		"..",
		"../people/self",
		"a/b",
		"a?include=email",
		"a#frag",
		"a b",
		"a%2Fb",
		"alice\x00",
		"alice\r\nX-Injected: 1",
		"zhang-san;rm",
		"李雷",
		"alice​",
		strings.Repeat("a", 129),
	}
	ids = append(ids, f.GenerateControlCharStrings()...)
	ids = append(ids, f.GeneratePathTraversals()...)
	return ids
}

// FuzzNumericID returns ids that no numeric kind accepts.
func (f *Fuzzer) FuzzNumericID() []int64 {
	ids := []int64{0, -1, -9223372036854775808}
	for range 5 {
		ids = append(ids, -f.rnd.Int63n(1<<40)-1)
	}
	return ids
}

// FuzzUserAgent returns user agents that would let a caller inject headers.
func (f *Fuzzer) FuzzUserAgent() []string {
	return []string{
		"bot/1.0\r\nAuthorization: Bearer stolen",
		"bot/1.0\nX-Evil: 1",
		"bot/1.0\rX-Evil: 1",
		"bot\x00/1.0",
		strings.Repeat("x", 257),
	}
}

// FuzzPageSize returns page sizes outside 1..100.
func (f *Fuzzer) FuzzPageSize() []int {
	sizes := []int{-1, 101, 1000, -2147483648}
	for range 3 {
		sizes = append(sizes, 101+f.rnd.Intn(10000))
	}
	return sizes
}

// GenerateControlCharStrings embeds each ASCII control character in an id.
func (f *Fuzzer) GenerateControlCharStrings() []string {
	var out []string
	for c := 0; c < 0x20; c++ {
		out = append(out, "user"+string(rune(c))+"name")
	}
	return append(out, "user\x7fname")
}

// GeneratePathTraversals returns ids that try to escape their path segment.
func (f *Fuzzer) GeneratePathTraversals() []string {
	return []string{
		"../../captcha",
		"..%2f..%2fsign_in",
		"%2e%2e",
		"people/../answers",
		"\\..\\",
		"/etc/passwd",
	}
}

// RandomString returns a random string of printable ASCII.
func (f *Fuzzer) RandomString(n int) string {
	var b strings.Builder
	for range n {
		b.WriteByte(byte(0x21 + f.rnd.Intn(0x5e)))
	}
	return b.String()
}
