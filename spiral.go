package afkslime

// Spiral lists every chunk in (-width/2, width/2] x (-height/2, height/2],
// starting at the origin and walking outward in a square spiral.
func Spiral(width, height int32) []Chunk {
	if width <= 0 || height <= 0 {
		return nil
	}

	side := int64(max(width, height))
	chunks := make([]Chunk, 0, int64(width)*int64(height))

	var x, z int32
	dx, dz := int32(0), int32(-1)
	for i := int64(0); i < side*side; i++ {
		if -width/2 < x && x <= width/2 && -height/2 < z && z <= height/2 {
			chunks = append(chunks, Chunk{x, z})
		}

		// Turn at the corners of the current ring
		if x == z || (x < 0 && x == -z) || (x > 0 && x == 1-z) {
			dx, dz = -dz, dx
		}
		x += dx
		z += dz
	}
	return chunks
}
