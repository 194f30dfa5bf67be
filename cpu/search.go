package cpu

import (
	"runtime"
	"sync"

	"github.com/vktec/afkslime"
)

// Number of spiral centers handed to a worker at a time
const batchSize = 1024

type Searcher struct {
	workerCount int
	mask        afkslime.Mask

	// Threshold filters results: 0 keeps all, t > 0 keeps count >= t,
	// t < 0 keeps count <= -t.
	Threshold int
	// Progress, if set, is advanced as centers are evaluated.
	Progress *afkslime.Progress
}

var _ afkslime.Searcher = (*Searcher)(nil)

func NewSearcher(workerCount int, mask afkslime.Mask) (*Searcher, error) {
	if workerCount <= 0 {
		workerCount = runtime.GOMAXPROCS(0)
	}
	return &Searcher{workerCount: workerCount, mask: mask}, nil
}
func (s *Searcher) Destroy() {}

func (s *Searcher) Mask() afkslime.Mask { return s.mask }

func (s *Searcher) Search(worldSeed int64, centers []afkslime.Chunk) []afkslime.Result {
	if s.Progress != nil {
		s.Progress.Start(len(centers))
	}

	batchCh := make(chan []afkslime.Chunk, 8)
	resultCh := make(chan []afkslime.Result, 8)
	wgroup := new(sync.WaitGroup)
	ctx := searchContext{World(worldSeed), s.Threshold, s.mask, s.Progress, wgroup, resultCh}
	go ctx.sendBatches(batchCh, centers)

	wgroup.Add(s.workerCount)
	for i := 0; i < s.workerCount; i++ {
		go ctx.search(batchCh)
	}

	results := ctx.collect()
	afkslime.SortResults(results)
	return results
}

type searchContext struct {
	world     World
	threshold int
	mask      afkslime.Mask
	progress  *afkslime.Progress
	wgroup    *sync.WaitGroup
	resultCh  chan []afkslime.Result
}

func (ctx searchContext) sendBatches(batchCh chan<- []afkslime.Chunk, centers []afkslime.Chunk) {
	for len(centers) > 0 {
		n := min(batchSize, len(centers))
		batchCh <- centers[:n]
		centers = centers[n:]
	}
	close(batchCh)

	ctx.wgroup.Wait()
	close(ctx.resultCh)
}

func (ctx searchContext) search(batchCh <-chan []afkslime.Chunk) {
	for batch := range batchCh {
		var results []afkslime.Result
		for _, center := range batch {
			count := ctx.world.CountMask(center, ctx.mask)
			if checkThreshold(ctx.threshold, int(count)) {
				results = append(results, afkslime.Result{X: center.X, Z: center.Z, Count: count})
			}
		}
		ctx.report(len(batch))
		if len(results) > 0 {
			ctx.resultCh <- results
		}
	}
	ctx.wgroup.Done()
}

func (ctx searchContext) report(n int) {
	if ctx.progress != nil {
		ctx.progress.Add(n)
	}
}

func (ctx searchContext) collect() []afkslime.Result {
	var results []afkslime.Result
	for batchResults := range ctx.resultCh {
		results = append(results, batchResults...)
	}
	return results
}

func checkThreshold(threshold, count int) bool {
	if threshold < 0 {
		return count <= -threshold
	} else {
		return count >= threshold
	}
}
