package crawler

import (
	"sync"

	"supplysync/internal/core/urlnorm"
)

// Kind labels a url by how the template classifies it
type Kind string

// Page kinds, used as metric and event labels
const (
	KindSeed   Kind = "seed"
	KindList   Kind = "list"
	KindSeries Kind = "series"
	KindDetail Kind = "detail"
)

type item struct {
	url  string
	kind Kind
}

// frontier hands each normalized url out at most once. Detail urls are served
// before anything else so products land early when a crawl is cut short
type frontier struct {
	mu     sync.Mutex
	cond   *sync.Cond
	seen   map[string]struct{}
	detail []item
	other  []item
	active int
	handed int
	limit  int
	closed bool
}

func newFrontier(limit int) *frontier {
	f := &frontier{seen: map[string]struct{}{}, limit: limit}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// push normalizes and enqueues u, reporting whether it was new
func (f *frontier) push(raw, base string, kind Kind) (string, bool) {
	u, ok := urlnorm.Normalize(raw, base)
	if !ok {
		return "", false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return u, false
	}
	if _, dup := f.seen[u]; dup {
		return u, false
	}
	f.seen[u] = struct{}{}
	if kind == KindDetail {
		f.detail = append(f.detail, item{url: u, kind: kind})
	} else {
		f.other = append(f.other, item{url: u, kind: kind})
	}
	f.cond.Signal()
	return u, true
}

// next blocks until an item is ready. It returns false once the queue is empty
// with nothing in flight, the page limit is reached, or the frontier is closed
func (f *frontier) next() (item, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for {
		if f.closed || f.handed >= f.limit {
			return item{}, false
		}
		var it item
		switch {
		case len(f.detail) > 0:
			it, f.detail = f.detail[0], f.detail[1:]
		case len(f.other) > 0:
			it, f.other = f.other[0], f.other[1:]
		case f.active == 0:
			return item{}, false
		default:
			f.cond.Wait()
			continue
		}
		f.active++
		f.handed++
		return it, true
	}
}

// done marks one handed out item finished
func (f *frontier) done() {
	f.mu.Lock()
	f.active--
	f.mu.Unlock()
	f.cond.Broadcast()
}

func (f *frontier) close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	f.cond.Broadcast()
}

func (f *frontier) size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen)
}
