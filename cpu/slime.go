package cpu

import "github.com/vktec/afkslime"

type World int64

// CalcChunk reports whether chunk (x, z) is a slime chunk.
// The int32 products must overflow exactly like the game's before being widened.
func (w World) CalcChunk(x, z int32) bool {
	seed := int64(w) +
		int64(x*x*0x4c1906) +
		int64(x*0x5ac0db) +
		int64(z*z)*0x4307a7 + // sic
		int64(z*0x5f24f)
	seed ^= 0x3ad8025f
	r := NewRandom(seed)
	return r.NextInt(10) == 0
}

// CountMask counts slime chunks under mask placed at center.
func (w World) CountMask(center afkslime.Chunk, mask afkslime.Mask) (count uint) {
	for _, off := range mask {
		c := center.Add(off)
		if w.CalcChunk(c.X, c.Z) {
			count++
		}
	}
	return count
}

// SlimeAround lists the slime chunks under mask placed at center, in mask order.
func (w World) SlimeAround(center afkslime.Chunk, mask afkslime.Mask) []afkslime.Chunk {
	var chunks []afkslime.Chunk
	for _, off := range mask {
		c := center.Add(off)
		if w.CalcChunk(c.X, c.Z) {
			chunks = append(chunks, c)
		}
	}
	return chunks
}
