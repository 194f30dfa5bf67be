package afkslime

import "sync/atomic"

// Progress counts evaluated candidates. It is safe for concurrent use.
type Progress struct {
	total atomic.Uint64
	done  atomic.Uint64
}

// Start resets the counter for a run over total candidates.
func (p *Progress) Start(total int) {
	p.done.Store(0)
	p.total.Store(uint64(total))
}

func (p *Progress) Add(n int) {
	p.done.Add(uint64(n))
}

func (p *Progress) Done() uint64  { return p.done.Load() }
func (p *Progress) Total() uint64 { return p.total.Load() }

// Fraction is in [0, 1]; an empty run counts as finished.
func (p *Progress) Fraction() float64 {
	total := p.Total()
	if total == 0 {
		return 1
	}
	return float64(p.Done()) / float64(total)
}
