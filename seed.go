package afkslime

import "strconv"

// ParseSeed converts a seed as typed into the game's world creation screen.
// Integers are used as is, anything else is hashed with HashString. Blanks are
// significant: " 7" is text. Front ends that want to forgive them trim first.
func ParseSeed(text string) int64 {
	if seed, err := strconv.ParseInt(text, 10, 64); err == nil {
		return seed
	}
	return int64(HashString(text))
}

// HashString is the Java String.hashCode polynomial (s[0]*31^(n-1) + ... + s[n-1])
// over the code points of text, in wrapping 32-bit arithmetic.
func HashString(text string) int32 {
	var h int32
	for _, c := range text {
		h = 31*h + int32(c)
	}
	return h
}
