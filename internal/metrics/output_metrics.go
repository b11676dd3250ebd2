package metrics

import (
	"sync"

	"github.com/hayeah/dircat/internal/selection"
)

// Item stores the counts for one document section.
type Item struct {
	Bytes  int
	Tokens int
	Lines  int
}

// Add adds the given counts to this item
func (m *Item) Add(bytes, tokens, lines int) {
	m.Bytes += bytes
	m.Tokens += tokens
	m.Lines += lines
}

// FileItem pairs a relative path with its counts.
type FileItem struct {
	Path string
	Item
}

type job struct {
	key     string
	content string
}

// OutputMetrics counts the sections of a document on a pool of workers so
// that tokenizing does not hold up writing.
type OutputMetrics struct {
	mu     sync.Mutex
	wg     sync.WaitGroup
	sendMu sync.RWMutex // guards jobs against close while sending
	jobs   chan job
	closed bool
	items  map[string]Item
	ctr    Counter
}

// NewOutputMetrics starts workers goroutines counting with counter.
func NewOutputMetrics(counter Counter, workers int) *OutputMetrics {
	if workers < 1 {
		workers = 1
	}

	m := &OutputMetrics{
		jobs:  make(chan job, workers*2),
		items: make(map[string]Item),
		ctr:   counter,
	}

	m.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go m.worker()
	}
	return m
}

func (m *OutputMetrics) worker() {
	defer m.wg.Done()

	for j := range m.jobs {
		bytes, tokens, lines := m.ctr.Count(j.content)

		m.mu.Lock()
		item := m.items[j.key]
		item.Add(bytes, tokens, lines)
		m.items[j.key] = item
		m.mu.Unlock()
	}
}

// Add queues content to be counted under key. Adding after Wait is a no-op.
func (m *OutputMetrics) Add(key string, content string) {
	m.sendMu.RLock()
	defer m.sendMu.RUnlock()
	if m.closed {
		return
	}
	m.jobs <- job{key: key, content: content}
}

// Wait closes the queue and blocks until every queued job is counted.
// It is safe to call more than once.
func (m *OutputMetrics) Wait() {
	m.sendMu.Lock()
	if !m.closed {
		m.closed = true
		close(m.jobs)
	}
	m.sendMu.Unlock()

	m.wg.Wait()
}

// Files returns the per-file counts in document order. Call Wait first.
func (m *OutputMetrics) Files() []FileItem {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]FileItem, 0, len(m.items))
	for k, v := range m.items {
		out = append(out, FileItem{Path: k, Item: v})
	}
	selection.SortPaths(out, func(f FileItem) string { return f.Path })
	return out
}

// Total returns the sum over all files.
func (m *OutputMetrics) Total() Item {
	m.mu.Lock()
	defer m.mu.Unlock()

	var sum Item
	for _, v := range m.items {
		sum.Add(v.Bytes, v.Tokens, v.Lines)
	}
	return sum
}
