package cpu

// Random is a bit-exact port of java.util.Random, enough of it to classify chunks.
// Not safe for concurrent use; make one per evaluation.
type Random struct {
	seed int64
}

const (
	magic    = 0x5DEECE66D
	seedMask = (1 << 48) - 1
)

func NewRandom(seed int64) Random {
	return Random{mixSeed(seed)}
}

func mixSeed(seed int64) int64 {
	return (seed ^ magic) & seedMask
}

// Next advances the state and returns its top bits, 1 <= bits <= 32.
func (r *Random) Next(bits int) int32 {
	r.seed = (r.seed*magic + 0xB) & seedMask
	return int32(r.seed >> (48 - bits))
}

// NextInt returns a value in [0, n). It panics if n <= 0.
func (r *Random) NextInt(n int32) int32 {
	if n <= 0 {
		panic("bound must be positive")
	}

	if n&-n == n {
		return int32((int64(n) * int64(r.Next(31))) >> 31)
	}

	// Rejects the partial bucket at the top of the range. The check relies on
	// int32 overflow: bits-val+(n-1) wraps negative exactly when it is too big.
	var bits, val int32
	for {
		bits = r.Next(31)
		val = bits % n
		if bits-val+(n-1) >= 0 {
			return val
		}
	}
}
