package cpu

import (
	"fmt"
	"io"
	"sync"

	"github.com/vktec/afkslime"
	"github.com/vktec/afkslime/util"
)

const SectionSize = 128

// SearchArea scans every center in [x0, x1) x [z0, z1). Unlike Search it caches
// the slime chunks of each section, so each chunk is classified about once
// instead of once per mask offset covering it.
func (s *Searcher) SearchArea(worldSeed int64, x0, z0, x1, z1 int32) []afkslime.Result {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if z0 > z1 {
		z0, z1 = z1, z0
	}

	mmin, mmax := s.mask.Bounds()
	if mmax.X-mmin.X >= SectionSize || mmax.Z-mmin.Z >= SectionSize {
		panic("Mask bounds exceed section size")
	}
	if s.Progress != nil {
		s.Progress.Start(int(int64(x1-x0) * int64(z1-z0)))
	}

	sectionCh := make(chan *Section, 8)
	resultCh := make(chan []afkslime.Result, 8)
	wgroup := new(sync.WaitGroup)
	ctx := searchContext{World(worldSeed), s.Threshold, s.mask, s.Progress, wgroup, resultCh}
	go ctx.sendSections(sectionCh, x0, z0, x1, z1)

	wgroup.Add(s.workerCount)
	for i := 0; i < s.workerCount; i++ {
		go ctx.searchSections(sectionCh)
	}

	results := ctx.collect()
	afkslime.SortResults(results)
	return results
}

func (ctx searchContext) sendSections(sectionCh chan<- *Section, x0, z0, x1, z1 int32) {
	mmin, mmax := ctx.mask.Bounds()
	shiftX := SectionSize - (mmax.X - mmin.X)
	shiftZ := SectionSize - (mmax.Z - mmin.Z)

	for x := x0; x < x1; x += shiftX {
		for z := z0; z < z1; z += shiftZ {
			// Section origin sits so the mask of the first center touches its corner
			sectionCh <- &Section{
				X: x + mmin.X, Z: z + mmin.Z,
				CX: x, CZ: z,
				W: min(shiftX, x1-x), H: min(shiftZ, z1-z),
			}
		}
	}
	close(sectionCh)

	ctx.wgroup.Wait()
	close(ctx.resultCh)
}

func (ctx searchContext) searchSections(sectionCh <-chan *Section) {
	for sec := range sectionCh {
		sec.Compute(ctx.world)
		results := sec.Search(ctx.mask, ctx.threshold)
		ctx.report(int(sec.W * sec.H))
		if len(results) > 0 {
			ctx.resultCh <- results
		}
	}
	ctx.wgroup.Done()
}

// Section caches slime chunks for a square of the world. Centers
// [CX, CX+W) x [CZ, CZ+H) have their whole mask inside it.
type Section struct {
	X, Z   int32
	CX, CZ int32
	W, H   int32
	Slime  [SectionSize * SectionSize]bool
}

func (sec *Section) Compute(world World) {
	for z := int32(0); z < SectionSize; z++ {
		for x := int32(0); x < SectionSize; x++ {
			sec.Set(x, z, world.CalcChunk(sec.X+x, sec.Z+z))
		}
	}
}

func (sec *Section) Search(mask afkslime.Mask, threshold int) (results []afkslime.Result) {
	for z := sec.CZ; z < sec.CZ+sec.H; z++ {
		for x := sec.CX; x < sec.CX+sec.W; x++ {
			count := sec.CheckMask(x, z, mask)
			if checkThreshold(threshold, int(count)) {
				results = append(results, afkslime.Result{X: x, Z: z, Count: count})
			}
		}
	}
	return results
}

// CheckMask counts slime chunks under mask centered on world chunk (x, z).
func (sec *Section) CheckMask(x, z int32, mask afkslime.Mask) (count uint) {
	for _, off := range mask {
		if sec.Get(x+off.X-sec.X, z+off.Z-sec.Z) {
			count++
		}
	}
	return count
}

func secIdx(x, z int32) int {
	util.Assert(0 <= x && x < SectionSize, "x out of range")
	util.Assert(0 <= z && z < SectionSize, "z out of range")
	return int(SectionSize*z + x)
}

func (sec *Section) Set(x, z int32, v bool) {
	sec.Slime[secIdx(x, z)] = v
}

func (sec *Section) Get(x, z int32) bool {
	return sec.Slime[secIdx(x, z)]
}

// dump draws the cached section, one row per line.
func (sec *Section) dump(w io.Writer) error {
	for z := int32(0); z < SectionSize; z++ {
		line := make([]byte, 0, 2*SectionSize)
		for x := int32(0); x < SectionSize; x++ {
			if x > 0 {
				line = append(line, ' ')
			}
			if sec.Get(x, z) {
				line = append(line, 'x')
			} else {
				line = append(line, ' ')
			}
		}
		if _, err := fmt.Fprintf(w, "%s\n", line); err != nil {
			return err
		}
	}
	return nil
}
