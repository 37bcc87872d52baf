// Package session implements the session controller: it owns open
// files, the active tab, page size, and the in-memory window of lines,
// orchestrating tail preview, up/down paging, jump-to-line, and tab
// close/clear.
package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/alienxp03/logbench/internal/linestore"
	"github.com/alienxp03/logbench/internal/matcher"
	"github.com/alienxp03/logbench/internal/pinstore"
	"github.com/alienxp03/logbench/internal/provider"
)

// AllTab is the sentinel selected-tab identifier for the aggregate
// view across every open file: it fans out no provider calls of its
// own, it only shows what's already loaded per file.
const AllTab = "ALL"

// MinPageSize and MaxPageSize bound the user-configurable page size.
const (
	MinPageSize = 2000
	MaxPageSize = 200000

	// minLoadBlock / maxLoadBlock bound loadMoreUp/Down's step size:
	// max(2000, min(pageSize, 20000)).
	minLoadBlock = 2000
	maxLoadBlock = 20000
)

// FileInfo is one open file's tab-level summary.
type FileInfo struct {
	Name       string
	TotalLines int
}

// Options configures New.
type Options struct {
	PageSize           int
	ChunkSize          int64
	LargeFileThreshold int64
	Store              *linestore.Store
	Pinned             *pinstore.Store
}

// Controller is the session controller. All exported methods are safe
// to call from a single goroutine driving a UI event loop; the
// concurrency guarantees below assume that caller discipline.
type Controller struct {
	mu        sync.Mutex
	store     *linestore.Store
	pinned    *pinstore.Store
	providers map[string]provider.Provider
	files     []FileInfo

	filter         matcher.Config
	showOnlyPinned bool
	selectedTab    string
	pageSize       int
	chunkSize      int64
	largeThreshold int64

	// windowByFile holds each open file's currently loaded lines,
	// independent of which tab is selected. The active tab's window is
	// windowByFile[selectedTab]; AllTab's is every file's concatenated.
	windowByFile  map[string][]provider.LogLine
	pendingJumpID string

	upInFlight   atomic.Bool
	downInFlight atomic.Bool
}

// New constructs an empty Controller.
func New(opts Options) *Controller {
	pageSize := opts.PageSize
	if pageSize < MinPageSize {
		pageSize = MinPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return &Controller{
		store:          opts.Store,
		pinned:         opts.Pinned,
		providers:      make(map[string]provider.Provider),
		windowByFile:   make(map[string][]provider.LogLine),
		pageSize:       pageSize,
		chunkSize:      opts.ChunkSize,
		largeThreshold: opts.LargeFileThreshold,
		filter:         matcher.Config{Level: matcher.LevelAll},
	}
}

// Files returns a snapshot of open-file tabs.
func (c *Controller) Files() []FileInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]FileInfo, len(c.files))
	copy(out, c.files)
	return out
}

// SelectedTab returns the active tab name, or AllTab.
func (c *Controller) SelectedTab() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectedTab
}

// Window returns a read-only snapshot of the currently loaded lines
// for the selected tab (or, for AllTab, every open file's lines
// concatenated in file-then-line order).
func (c *Controller) Window() []provider.LogLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.windowLocked()
}

func (c *Controller) windowLocked() []provider.LogLine {
	if c.selectedTab == AllTab {
		var out []provider.LogLine
		for _, f := range c.files {
			out = append(out, c.windowByFile[f.Name]...)
		}
		return out
	}
	src := c.windowByFile[c.selectedTab]
	out := make([]provider.LogLine, len(src))
	copy(out, src)
	return out
}

// PendingJumpID returns the id the viewport should scroll to next, if any.
func (c *Controller) PendingJumpID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingJumpID
}

// ClearPendingJump clears the pending jump once the viewport has acted on it.
func (c *Controller) ClearPendingJump() {
	c.mu.Lock()
	c.pendingJumpID = ""
	c.mu.Unlock()
}

// Filter returns the active filter configuration.
func (c *Controller) Filter() matcher.Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// SetFilter replaces the active filter configuration.
func (c *Controller) SetFilter(cfg matcher.Config) {
	c.mu.Lock()
	c.filter = cfg
	c.mu.Unlock()
}

// ShowOnlyPinned reports whether the pinned-only view is active.
func (c *Controller) ShowOnlyPinned() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.showOnlyPinned
}

// SetShowOnlyPinned toggles the pinned-only view.
func (c *Controller) SetShowOnlyPinned(v bool) {
	c.mu.Lock()
	c.showOnlyPinned = v
	c.mu.Unlock()
}

// HasActiveFilter reports whether a filter condition is non-trivial:
// query non-empty, level != ALL, or pinned-only.
func (c *Controller) HasActiveFilter() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter.Query != "" || c.filter.Level != matcher.LevelAll || c.showOnlyPinned
}

// PageSize returns the current page size.
func (c *Controller) PageSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pageSize
}

// Pinned exposes the pinned store for the viewport's lookup needs.
func (c *Controller) Pinned() *pinstore.Store { return c.pinned }

// AddFiles imports each path as its own tab and loads each file's
// tail(min(pageSize,total)) into its window. Per-file work may run
// concurrently; the last successfully imported path becomes the
// selected tab. A file that fails to import is skipped, and every
// such failure is returned joined into one error.
func (c *Controller) AddFiles(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	type imported struct {
		path string
		info FileInfo
		err  error
	}
	results := make([]imported, len(paths))

	g, _ := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			p, err := provider.New(path, provider.Options{
				ChunkSize:          c.chunkSize,
				LargeFileThreshold: c.largeThreshold,
				Store:              c.store,
			})
			if err != nil {
				results[i] = imported{path: path, err: err}
				return nil // one file's failure doesn't abort the batch
			}
			n := c.pageSize
			if p.TotalLines() < n {
				n = p.TotalLines()
			}
			tail, err := p.Tail(n)
			if err != nil {
				p.Dispose()
				results[i] = imported{path: path, err: err}
				return nil
			}
			c.mu.Lock()
			c.providers[p.FileName()] = p
			c.windowByFile[p.FileName()] = tail
			c.mu.Unlock()
			results[i] = imported{path: path, info: FileInfo{Name: p.FileName(), TotalLines: p.TotalLines()}}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	c.mu.Lock()
	var lastGood string
	var failed []error
	for _, r := range results {
		if r.err != nil {
			failed = append(failed, r.err)
			continue
		}
		c.upsertFileLocked(r.info)
		lastGood = r.info.Name
	}
	c.mu.Unlock()

	if lastGood != "" {
		if err := c.SelectTab(lastGood); err != nil {
			failed = append(failed, err)
		}
	}
	return errors.Join(failed...)
}

// upsertFileLocked merges a file's info by name, last-writer-wins.
// Caller must hold c.mu.
func (c *Controller) upsertFileLocked(info FileInfo) {
	for i, f := range c.files {
		if f.Name == info.Name {
			c.files[i] = info
			return
		}
	}
	c.files = append(c.files, info)
}

// SelectTab loads tail(min(pageSize,total)) into that file's window
// and makes it the active tab, or, for AllTab, just switches the
// active tab without any provider calls.
func (c *Controller) SelectTab(name string) error {
	if name == AllTab {
		c.mu.Lock()
		c.selectedTab = name
		c.mu.Unlock()
		return nil
	}

	c.mu.Lock()
	p, ok := c.providers[name]
	pageSize := c.pageSize
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("session: unknown tab %q", name)
	}

	n := pageSize
	if p.TotalLines() < n {
		n = p.TotalLines()
	}
	lines, err := p.Tail(n)
	if err != nil {
		return fmt.Errorf("session: SelectTab(%s): %w", name, err)
	}

	c.mu.Lock()
	c.selectedTab = name
	c.windowByFile[name] = lines
	c.mu.Unlock()
	return nil
}

// loadBlock is max(2000, min(pageSize, 20000)).
func (c *Controller) loadBlock() int {
	b := c.pageSize
	if b > maxLoadBlock {
		b = maxLoadBlock
	}
	if b < minLoadBlock {
		b = minLoadBlock
	}
	return b
}

// LoadMoreUp expands window toward lower line numbers for the
// currently selected file. A re-entrant call while one is in flight is
// a no-op (single-flight per direction).
func (c *Controller) LoadMoreUp() error {
	if !c.upInFlight.CompareAndSwap(false, true) {
		return nil
	}
	defer c.upInFlight.Store(false)

	c.mu.Lock()
	name := c.selectedTab
	p, ok := c.providers[name]
	block := c.loadBlock()
	lowest := minLineNumber(c.windowByFile[name])
	c.mu.Unlock()
	if !ok || name == AllTab || lowest <= 1 {
		return nil
	}

	from := lowest - block
	if from < 1 {
		from = 1
	}
	lines, err := p.Range(from, lowest-1)
	if err != nil {
		return fmt.Errorf("session: LoadMoreUp: %w", err)
	}

	c.mu.Lock()
	if c.providers[name] != nil {
		c.windowByFile[name] = mergeSorted(lines, c.windowByFile[name])
	}
	c.mu.Unlock()
	return nil
}

// LoadMoreDown expands window toward higher line numbers.
func (c *Controller) LoadMoreDown() error {
	if !c.downInFlight.CompareAndSwap(false, true) {
		return nil
	}
	defer c.downInFlight.Store(false)

	c.mu.Lock()
	name := c.selectedTab
	p, ok := c.providers[name]
	block := c.loadBlock()
	highest := maxLineNumber(c.windowByFile[name])
	c.mu.Unlock()
	if !ok || name == AllTab {
		return nil
	}
	total := p.TotalLines()
	if highest >= total {
		return nil
	}

	to := highest + block
	if to > total {
		to = total
	}
	lines, err := p.Range(highest+1, to)
	if err != nil {
		return fmt.Errorf("session: LoadMoreDown: %w", err)
	}

	c.mu.Lock()
	if c.providers[name] != nil {
		c.windowByFile[name] = mergeSorted(c.windowByFile[name], lines)
	}
	c.mu.Unlock()
	return nil
}

// JumpToLine clamps n into [1,total], loads a pageSize window centered
// on n, and arms pendingJumpID so the viewport scrolls there.
func (c *Controller) JumpToLine(n int) error {
	c.mu.Lock()
	name := c.selectedTab
	p, ok := c.providers[name]
	pageSize := c.pageSize
	c.mu.Unlock()
	if !ok || name == AllTab {
		return nil
	}

	total := p.TotalLines()
	if n < 1 {
		n = 1
	}
	if n > total {
		n = total
	}

	before := (pageSize - 1) / 2
	from := n - before
	to := from + pageSize - 1
	if from < 1 {
		from = 1
		to = from + pageSize - 1
	}
	if to > total {
		to = total
		from = to - pageSize + 1
		if from < 1 {
			from = 1
		}
	}

	jumpID := fmt.Sprintf("%s:%d", name, n)
	lines, err := p.Range(from, to)
	if err != nil {
		return fmt.Errorf("session: JumpToLine(%d): %w", n, err)
	}

	c.mu.Lock()
	// A superseded jump (the selected tab changed while this was in
	// flight) is discarded at merge time.
	if c.selectedTab == name {
		c.windowByFile[name] = lines
		c.pendingJumpID = jumpID
	}
	c.mu.Unlock()
	return nil
}

// TogglePin forwards to the pinned store.
func (c *Controller) TogglePin(id string) error {
	return c.pinned.TogglePin(id)
}

// CloseFileTab disposes the provider, purges any persisted rows, and
// drops pinned entries for the file.
func (c *Controller) CloseFileTab(name string) error {
	c.mu.Lock()
	p, ok := c.providers[name]
	delete(c.providers, name)
	delete(c.windowByFile, name)
	for i, f := range c.files {
		if f.Name == name {
			c.files = append(c.files[:i], c.files[i+1:]...)
			break
		}
	}
	wasSelected := c.selectedTab == name
	c.mu.Unlock()

	if !ok {
		return nil
	}
	if err := p.Dispose(); err != nil {
		return fmt.Errorf("session: CloseFileTab(%s): dispose: %w", name, err)
	}
	if c.store != nil {
		if err := c.store.DeleteFile(name); err != nil {
			return fmt.Errorf("session: CloseFileTab(%s): %w", name, err)
		}
	}
	if err := c.pinned.RemoveFile(name); err != nil {
		return fmt.Errorf("session: CloseFileTab(%s): pinned: %w", name, err)
	}

	if wasSelected {
		c.mu.Lock()
		c.selectedTab = ""
		var next string
		if len(c.files) > 0 {
			next = c.files[len(c.files)-1].Name
		}
		c.mu.Unlock()
		if next != "" {
			return c.SelectTab(next)
		}
	}
	return nil
}

// ClearAll disposes every provider, purges all persisted rows and
// pins, and resets to an empty session.
func (c *Controller) ClearAll() error {
	c.mu.Lock()
	names := make([]string, 0, len(c.files))
	for _, f := range c.files {
		names = append(names, f.Name)
	}
	c.mu.Unlock()

	for _, name := range names {
		if err := c.CloseFileTab(name); err != nil {
			return err
		}
	}
	if c.store != nil {
		if err := c.store.ClearAll(); err != nil {
			return fmt.Errorf("session: ClearAll: %w", err)
		}
	}
	c.mu.Lock()
	c.windowByFile = make(map[string][]provider.LogLine)
	c.selectedTab = ""
	c.pendingJumpID = ""
	c.mu.Unlock()
	return nil
}

func minLineNumber(lines []provider.LogLine) int {
	min := 0
	for _, l := range lines {
		if min == 0 || l.LineNumber < min {
			min = l.LineNumber
		}
	}
	return min
}

func maxLineNumber(lines []provider.LogLine) int {
	max := 0
	for _, l := range lines {
		if l.LineNumber > max {
			max = l.LineNumber
		}
	}
	return max
}

// mergeSorted concatenates a then b, de-duplicates by id, and sorts
// ascending by line number.
func mergeSorted(a, b []provider.LogLine) []provider.LogLine {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]provider.LogLine, 0, len(a)+len(b))
	for _, l := range a {
		if _, dup := seen[l.ID]; dup {
			continue
		}
		seen[l.ID] = struct{}{}
		out = append(out, l)
	}
	for _, l := range b {
		if _, dup := seen[l.ID]; dup {
			continue
		}
		seen[l.ID] = struct{}{}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LineNumber < out[j].LineNumber })
	return out
}
