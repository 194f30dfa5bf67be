package afkslime

import "fmt"

// Chunk is a chunk coordinate on the search grid.
type Chunk struct {
	X int32 `json:"x"`
	Z int32 `json:"z"`
}

// Add translates c by o. Overflow wraps like the game's int arithmetic.
func (c Chunk) Add(o Chunk) Chunk {
	return Chunk{c.X + o.X, c.Z + o.Z}
}

func (c Chunk) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Z)
}
