package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/matzehuels/alchemytree/pkg/layout"
	"github.com/matzehuels/alchemytree/pkg/reveal"
)

// playCommand creates the play command, an interactive staged-reveal player.
func (c *CLI) playCommand() *cobra.Command {
	var (
		flags  layoutFlags
		delay  time.Duration
		paused bool
		watch  bool
	)

	cmd := &cobra.Command{
		Use:   "play [recipe]",
		Short: "Reveal a recipe tree level by level in the terminal",
		Long: `Reveal a recipe tree level by level in the terminal.

The tree is laid out, then one depth level is exposed per tick, starting
with the target element.

Keys:
  space  play / pause
  f      speed up (halves the delay)
  r      reset
  q      quit

With --watch the recipe file is reloaded whenever it changes and the reveal
restarts from the top.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPlay(cmd, args[0], &flags, delay, !paused, watch)
		},
	}

	cmd.Flags().DurationVar(&delay, "delay", 0, "interval between levels (default from config)")
	cmd.Flags().BoolVar(&paused, "paused", false, "start paused")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload when the recipe file changes")
	flags.register(cmd)

	return cmd
}

func (c *CLI) runPlay(cmd *cobra.Command, input string, flags *layoutFlags, delay time.Duration, autoplay, watch bool) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	load := func(ctx context.Context) (*layout.Graph, error) {
		opts, err := c.pipelineOptions(cmd, input, flags)
		if err != nil {
			return nil, err
		}
		return runner.Layout(ctx, opts)
	}

	g, err := load(ctx)
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}

	if delay == 0 {
		delay = c.Config.Reveal.Delay.Duration
	}
	box := newSnapshotBox()
	sched := reveal.New(reveal.Options{
		Delay:    delay,
		MinDelay: c.Config.Reveal.MinDelay.Duration,
		Logger:   c.Logger,
		OnChange: box.put,
	})
	defer sched.Close()

	m := newPlayModel(sched, box, filepath.Base(input), autoplay)
	m.load(g)

	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())

	if watch {
		w, err := newRecipeWatcher(input)
		if err != nil {
			return err
		}
		defer w.Close()
		go w.run(ctx, c.Logger, func() {
			g, err := load(ctx)
			if err != nil {
				p.Send(reloadErrMsg{err: err})
				return
			}
			p.Send(graphMsg{graph: g})
		})
	}

	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// =============================================================================
// Scheduler bridge
// =============================================================================

// snapshotBox holds the latest scheduler snapshot. Snapshots carry the full
// visible state, so a newer one replaces an unread older one and put never
// blocks the scheduler.
//
// The scheduler hands snapshots over after releasing its lock, so a tick and
// a concurrent Reset may deliver theirs in either order. put orders them by
// Seq and drops any snapshot older than one it has already accepted.
type snapshotBox struct {
	mu   sync.Mutex
	ch   chan reveal.Snapshot
	last uint64 // highest Seq accepted
}

func newSnapshotBox() *snapshotBox {
	return &snapshotBox{ch: make(chan reveal.Snapshot, 1)}
}

func (b *snapshotBox) put(s reveal.Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s.Seq <= b.last {
		return
	}
	b.last = s.Seq
	select {
	case <-b.ch:
	default:
	}
	b.ch <- s
}

// next waits for the next snapshot.
func (b *snapshotBox) next() tea.Msg {
	return snapshotMsg(<-b.ch)
}

type (
	snapshotMsg  reveal.Snapshot
	graphMsg     struct{ graph *layout.Graph }
	reloadErrMsg struct{ err error }
)

// =============================================================================
// playModel - bubbletea player
// =============================================================================

var (
	playDepthStyle  = lipgloss.NewStyle().Foreground(colorGray).Width(9)
	playNodeStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	playHiddenStyle = lipgloss.NewStyle().Foreground(colorDim)
	playStateStyle  = lipgloss.NewStyle().Foreground(colorEmerald).Bold(true)
	playErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
	playFrameStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)
)

// playModel renders scheduler snapshots. It drives the scheduler from key
// presses and never mutates the snapshot it was handed.
type playModel struct {
	sched    *reveal.Scheduler
	box      *snapshotBox
	title    string
	autoplay bool

	graph *layout.Graph
	snap  reveal.Snapshot
	err   error
	width int
}

func newPlayModel(sched *reveal.Scheduler, box *snapshotBox, title string, autoplay bool) *playModel {
	return &playModel{sched: sched, box: box, title: title, autoplay: autoplay}
}

// load hands a new graph to the scheduler, superseding the current one.
func (m *playModel) load(g *layout.Graph) {
	m.graph = g
	m.err = nil
	m.snap = reveal.Snapshot{BuildID: g.BuildID, Status: reveal.Status{Total: len(g.Levels), Delay: m.sched.Status().Delay}}
	m.sched.Load(g)
	if m.autoplay {
		m.sched.Play()
	}
}

func (m *playModel) Init() tea.Cmd {
	return m.box.next
}

func (m *playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		if m.graph != nil && msg.BuildID == m.graph.BuildID {
			m.snap = reveal.Snapshot(msg)
		}
		return m, m.box.next
	case graphMsg:
		m.load(msg.graph)
	case reloadErrMsg:
		m.err = msg.err
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ", "p":
			m.sched.Toggle()
		case "f", "+":
			m.sched.SpeedUp()
		case "r":
			m.sched.Reset()
		}
	}
	return m, nil
}

func (m *playModel) View() string {
	var b strings.Builder

	st := m.snap.Status
	b.WriteString(StyleTitle.Render(m.title))
	b.WriteString(StyleDim.Render("  " + st.Text() + " · " + st.SpeedText() + " · "))
	b.WriteString(playStateStyle.Render(st.State.String()))
	b.WriteString("\n\n")

	b.WriteString(playFrameStyle.Render(m.levelsView()))
	b.WriteString("\n")

	combine, result := 0, 0
	for _, e := range m.snap.Edges {
		switch e.Kind {
		case layout.EdgeCombine:
			combine++
		case layout.EdgeResult:
			result++
		}
	}
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %s · %d combine · %d result edges",
		plural(len(m.snap.Nodes), "node"), combine, result)))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(playErrorStyle.Render("  reload failed: " + m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("space play/pause  f faster  r reset  q quit"))
	return b.String()
}

// levelsView draws one row per depth: revealed rows list their elements,
// hidden rows show how many nodes are still to come.
func (m *playModel) levelsView() string {
	if m.graph == nil || len(m.graph.Levels) == 0 {
		return playHiddenStyle.Render("nothing to reveal")
	}

	byDepth := make(map[int][]string)
	for _, n := range m.snap.Nodes {
		byDepth[n.Depth] = append(byDepth[n.Depth], n.Element.Label())
	}

	rows := make([]string, 0, len(m.graph.Levels))
	for _, lvl := range m.graph.Levels {
		label := playDepthStyle.Render(fmt.Sprintf("depth %d", lvl.Depth))
		names, shown := byDepth[lvl.Depth]
		var line string
		if shown {
			line = playNodeStyle.Render(strings.Join(names, "   "))
		} else {
			line = playHiddenStyle.Render(strings.Repeat("· ", len(lvl.NodeIDs)))
		}
		if m.width > 0 {
			line = lipgloss.NewStyle().MaxWidth(m.width - 16).Render(line)
		}
		rows = append(rows, label+line)
	}
	return strings.Join(rows, "\n")
}

// =============================================================================
// File watching
// =============================================================================

// recipeWatcher reports changes to one recipe file. It watches the parent
// directory so editors that replace the file on save are still seen.
type recipeWatcher struct {
	w    *fsnotify.Watcher
	path string
}

func newRecipeWatcher(path string) (*recipeWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	return &recipeWatcher{w: w, path: abs}, nil
}

// relevant reports whether ev changed the watched file's contents.
func (rw *recipeWatcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != rw.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)
}

// run calls reload after each burst of changes until ctx is done. Changes
// within debounce of each other trigger one reload.
func (rw *recipeWatcher) run(ctx context.Context, logger *log.Logger, reload func()) {
	const debounce = 100 * time.Millisecond

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-rw.w.Events:
			if !ok {
				return
			}
			if rw.relevant(ev) {
				fire = time.After(debounce)
			}
		case err, ok := <-rw.w.Errors:
			if !ok {
				return
			}
			logger.Warn("watch error", "error", err)
		case <-fire:
			fire = nil
			reload()
		}
	}
}

func (rw *recipeWatcher) Close() error {
	return rw.w.Close()
}
