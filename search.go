package afkslime

// Searcher counts slime chunks in the mask around every candidate center.
// Results come back ranked with SortResults.
type Searcher interface {
	Search(worldSeed int64, centers []Chunk) []Result
	Destroy()
}
