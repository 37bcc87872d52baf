// Package app wires the session controller, filter/matcher, and
// virtualized viewport into a single Bubble Tea Model/Update/View loop.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alienxp03/logbench/internal/classify"
	"github.com/alienxp03/logbench/internal/linestore"
	"github.com/alienxp03/logbench/internal/matcher"
	"github.com/alienxp03/logbench/internal/pinstore"
	"github.com/alienxp03/logbench/internal/session"
	"github.com/alienxp03/logbench/internal/viewport"
)

// prefetchInterval is the active-filter prefetch cadence, ~2 Hz.
const prefetchInterval = 500 * time.Millisecond

// Config bundles the CLI-configurable knobs for a session.
type Config struct {
	Paths              []string
	PageSize           int
	MaxLines           int
	ChunkSize          int64
	LargeFileThreshold int64
	DBPath             string
	Include            string
	Exclude            string
	Timezone           string
	Logger             *slog.Logger
}

type focusTarget int

const (
	focusViewport focusTarget = iota
	focusFilter
	focusJump
)

// Model is the root Bubble Tea model.
type Model struct {
	cfg    Config
	log    *slog.Logger
	sess   *session.Controller
	store  *linestore.Store
	pinned *pinstore.Store

	keys   keyMap
	styles viewport.Styles

	width, height int
	focus         focusTarget

	filterInput textinput.Model
	jumpInput   textinput.Model
	useRegex    bool
	caseSens    bool
	level       classify.Severity

	heights     *viewport.HeightMap
	vp          *viewport.State
	selectedIdx int
	matcher     *matcher.Matcher

	statusMsg string
	err       error

	prefetchUp bool
}

// New constructs the root model; it opens the persisted store and
// pinned store. cfg.Paths are imported later, by Init.
func New(cfg Config) (*Model, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	store, err := linestore.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("app: open store: %w", err)
	}
	pinned, err := pinstore.Load(store)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("app: load pinned state: %w", err)
	}
	if cfg.MaxLines > 0 {
		if err := store.SetMaxLines(cfg.MaxLines); err != nil {
			store.Close()
			return nil, fmt.Errorf("app: set max lines: %w", err)
		}
	}

	sess := session.New(session.Options{
		PageSize:           cfg.PageSize,
		ChunkSize:          cfg.ChunkSize,
		LargeFileThreshold: cfg.LargeFileThreshold,
		Store:              store,
		Pinned:             pinned,
	})

	filterInput := textinput.New()
	filterInput.Placeholder = "filter (applies as you type, Enter/Esc to close)"
	filterInput.CharLimit = 512
	if cfg.Include != "" {
		filterInput.SetValue(cfg.Include)
	}

	jumpInput := textinput.New()
	jumpInput.Placeholder = "line number"
	jumpInput.CharLimit = 20

	m := &Model{
		cfg:         cfg,
		log:         cfg.Logger,
		sess:        sess,
		store:       store,
		pinned:      pinned,
		keys:        defaultKeyMap(),
		styles:      viewport.DefaultStyles(),
		filterInput: filterInput,
		jumpInput:   jumpInput,
		level:       matcher.LevelAll,
		heights:     viewport.NewHeightMap(),
		vp:          viewport.NewState(),
	}
	m.applyFilter()
	return m, nil
}

// Init satisfies tea.Model: it imports the configured paths and arms
// the prefetch ticker.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.importFilesCmd(m.cfg.Paths), m.tickCmd())
}

func (m *Model) importFilesCmd(paths []string) tea.Cmd {
	return func() tea.Msg {
		if len(paths) == 0 {
			return filesImportedMsg{}
		}
		err := m.sess.AddFiles(context.Background(), paths)
		return filesImportedMsg{err: err}
	}
}

func (m *Model) tickCmd() tea.Cmd {
	return tea.Tick(prefetchInterval, func(t time.Time) tea.Msg {
		return prefetchTickMsg(t)
	})
}

type filesImportedMsg struct{ err error }
type prefetchTickMsg time.Time
type topLoadDoneMsg struct{ err error }

func (m *Model) applyFilter() {
	cfg := matcher.Config{
		Query:         m.filterInput.Value(),
		Mode:          m.mode(),
		CaseSensitive: m.caseSens,
		Level:         m.level,
	}
	m.sess.SetFilter(cfg)
	m.matcher = matcher.Compile(cfg)
}

func (m *Model) mode() matcher.Mode {
	if m.useRegex {
		return matcher.ModeRegex
	}
	return matcher.ModeText
}

// Close releases the store; call on program exit.
func (m *Model) Close() error {
	return m.store.Close()
}
