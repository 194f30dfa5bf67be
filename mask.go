package afkslime

import (
	"fmt"
	"io"
	"sort"
)

// DespawnRadius is the despawn sphere radius in chunks used for AFK spots.
const DespawnRadius = 7

// Mask is a set of chunk offsets relative to a candidate center.
type Mask []Chunk

// The player stands somewhere inside the center chunk, so the sphere is
// measured from each corner the position can round towards.
var despawnCenters = [...]Chunk{{0, 0}, {0, -1}, {-1, 0}, {-1, -1}}

// DespawnMask returns the chunks strictly within radius of any of the four
// reference centers, without duplicates, ordered by z then x.
func DespawnMask(radius int32) Mask {
	seen := make(map[Chunk]struct{})
	for _, c := range despawnCenters {
		for x := c.X - radius; x <= c.X+radius; x++ {
			for z := c.Z - radius; z <= c.Z+radius; z++ {
				dx, dz := x-c.X, z-c.Z
				if dx*dx+dz*dz < radius*radius {
					seen[Chunk{x, z}] = struct{}{}
				}
			}
		}
	}

	mask := make(Mask, 0, len(seen))
	for c := range seen {
		mask = append(mask, c)
	}
	sort.Slice(mask, func(i, j int) bool {
		if mask[i].Z != mask[j].Z {
			return mask[i].Z < mask[j].Z
		}
		return mask[i].X < mask[j].X
	})
	return mask
}

// Bounds returns the inclusive bounding box of the offsets.
func (m Mask) Bounds() (min, max Chunk) {
	for i, c := range m {
		if i == 0 {
			min, max = c, c
			continue
		}
		if c.X < min.X {
			min.X = c.X
		}
		if c.Z < min.Z {
			min.Z = c.Z
		}
		if c.X > max.X {
			max.X = c.X
		}
		if c.Z > max.Z {
			max.Z = c.Z
		}
	}
	return min, max
}

func (m Mask) Contains(c Chunk) bool {
	for _, o := range m {
		if o == c {
			return true
		}
	}
	return false
}

// Print draws the mask with the origin chunk marked "o".
func (m Mask) Print(w io.Writer) error {
	min, max := m.Bounds()
	for z := min.Z; z <= max.Z; z++ {
		line := make([]byte, 0, 2*(max.X-min.X+1))
		for x := min.X; x <= max.X; x++ {
			if x > min.X {
				line = append(line, ' ')
			}
			switch {
			case x == 0 && z == 0:
				line = append(line, 'o')
			case m.Contains(Chunk{x, z}):
				line = append(line, 'x')
			default:
				line = append(line, ' ')
			}
		}
		if _, err := fmt.Fprintf(w, "%s\n", line); err != nil {
			return err
		}
	}
	return nil
}
