package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/force"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/interaction"
	"github.com/matzehuels/forcegraph/pkg/pipeline"
	"github.com/matzehuels/forcegraph/pkg/render"
	"github.com/matzehuels/forcegraph/pkg/render/canvas"
	"github.com/matzehuels/forcegraph/pkg/viewport"
)

// Terminal cells are about twice as tall as wide; each cell stands for a
// cellWidth x cellHeight patch of the container.
const (
	cellWidth   = 8.0
	cellHeight  = 16.0
	statusLines = 2

	// wheelStep is the wheel delta of one notch.
	wheelStep = 100.0
	// keyZoom is the zoom factor of the +/- keys.
	keyZoom = 1.25
)

// viewCommand creates the view command for exploring a live simulation.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		watch  bool
		labels bool
	)

	cmd := &cobra.Command{
		Use:   "view [graph.json|graph.yaml]",
		Short: "Explore a live simulation in the terminal",
		Long: `Explore a live simulation in the terminal.

The graph is animated frame by frame until the simulation stops. Drag a
node with the mouse to pin it under the pointer; the simulation reheats
and the node stays where it is released. Drag empty space to pan, use the
wheel or +/- to zoom, r to reset the view, space to reheat and q to quit.

With --watch the file is reloaded whenever it changes. Nodes that survive
the change keep their positions.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == pipeline.Stdin {
				return errors.New(errors.ErrCodeInvalidInput, "view reads the terminal from stdin; pass a graph file")
			}
			if !cmd.Flags().Changed("labels") {
				labels = c.Config.Output.Labels
			}
			return c.runView(cmd.Context(), args[0], watch, labels)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload the graph when the file changes")
	cmd.Flags().BoolVar(&labels, "labels", true, "draw node labels")

	return cmd
}

func (c *CLI) runView(ctx context.Context, input string, watch, labels bool) error {
	g, err := graph.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	m := newViewModel(input, g, viewSettings{
		params:      c.Config.Params(),
		interaction: c.Config.InteractionOptions(),
		labels:      labels,
		interval:    c.Config.FrameInterval(),
	})
	defer m.teardown()

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
	)

	if watch {
		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := watchGraph(watchCtx, input, p.Send, c.Logger); err != nil {
			return err
		}
	}

	c.Logger.Debug("starting viewer", "input", input, "nodes", g.NodeCount(), "watch", watch)
	if _, err := p.Run(); err != nil {
		if stderrors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("viewer: %w", err)
	}
	return nil
}

// =============================================================================
// viewModel - bubbletea model driving one visualization
// =============================================================================

type viewSettings struct {
	params      force.Params
	interaction interaction.Options
	labels      bool
	interval    time.Duration
}

// frameMsg advances the simulation by one tick.
type frameMsg struct{}

// reloadMsg carries a freshly read dataset.
type reloadMsg struct {
	graph graph.Graph
	err   error
}

type viewModel struct {
	source   string
	settings viewSettings
	graph    graph.Graph

	scene   *render.Scene
	ctrl    *interaction.Controller
	surface *canvas.Surface
	bridge  *render.Bridge

	width, height float64
	ready         bool
	ticking       bool
	reloads       int
	reloadErr     error
}

func newViewModel(source string, g graph.Graph, s viewSettings) *viewModel {
	if s.interval <= 0 {
		s.interval = time.Second / 30
	}
	surface := canvas.New(1, 1, s.labels)
	return &viewModel{
		source:   source,
		settings: s,
		graph:    g,
		ctrl:     interaction.New(nil, s.interaction),
		surface:  surface,
		bridge:   render.NewBridge(surface),
	}
}

// Init waits for the first window size before building the scene.
func (m *viewModel) Init() tea.Cmd { return nil }

func (m *viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		cmd = m.resize(msg.Width, msg.Height)

	case frameMsg:
		m.ticking = false
		if m.scene != nil && m.scene.Tick() {
			m.ticking = true
			cmd = m.nextFrame()
		}

	case tea.MouseMsg:
		if !m.ready {
			return m, nil
		}
		m.mouse(msg)
		cmd = m.startTicking()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.teardown()
			return m, tea.Quit
		case "r":
			m.ctrl.Reset()
		case " ":
			if m.scene != nil && m.scene.Simulator() != nil {
				m.scene.Simulator().Reheat()
			}
			cmd = m.startTicking()
		case "+", "=":
			m.ctrl.Pinch(keyZoom, m.width/2, m.height/2)
		case "-", "_":
			m.ctrl.Pinch(1/keyZoom, m.width/2, m.height/2)
		}

	case reloadMsg:
		cmd = m.reload(msg)
	}

	m.draw()
	return m, cmd
}

func (m *viewModel) resize(cols, rows int) tea.Cmd {
	rows = max(rows-statusLines, 1)
	cols = max(cols, 1)
	m.surface.Resize(cols, rows)
	m.width, m.height = float64(cols)*cellWidth, float64(rows)*cellHeight
	m.bridge.SetSize(m.width, m.height)

	if !m.ready {
		m.ready = true
		m.build(m.graph)
		m.ctrl.Mount(m.width, m.height, m.content())
		return m.startTicking()
	}
	m.ctrl.Resize(m.width, m.height)
	m.ctrl.Mount(m.width, m.height, m.content())
	return nil
}

// content is the box the view is fitted to: the simulation container.
func (m *viewModel) content() viewport.ContentBox {
	return viewport.ContentBox{Width: m.width, Height: m.height}
}

// build replaces the scene with one built from g. Nodes present in the
// previous scene keep their positions.
func (m *viewModel) build(g graph.Graph) {
	params := m.settings.params
	params.Width, params.Height = m.width, m.height

	var opts []force.BuildOption
	if m.scene != nil {
		if sim := m.scene.Simulator(); sim != nil {
			opts = append(opts, force.WithPositions(sim.Snapshot().Positions))
		}
		m.scene.Halt()
	}
	m.graph = g
	m.scene = render.NewScene(g, params, opts...)
	m.ctrl.SetSimulator(m.scene.Simulator())
}

func (m *viewModel) reload(msg reloadMsg) tea.Cmd {
	if msg.err != nil {
		m.reloadErr = msg.err
		return nil
	}
	m.reloadErr = nil
	m.reloads++
	if !m.ready {
		m.graph = msg.graph
		return nil
	}
	m.build(msg.graph)
	return m.startTicking()
}

func (m *viewModel) mouse(msg tea.MouseMsg) {
	p := m.surface.CellToScreen(msg.X, msg.Y)
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.ctrl.Wheel(-wheelStep, p.X, p.Y)
	case msg.Button == tea.MouseButtonWheelDown:
		m.ctrl.Wheel(wheelStep, p.X, p.Y)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.ctrl.PointerDown(p.X, p.Y)
	case msg.Action == tea.MouseActionMotion:
		m.ctrl.PointerMove(p.X, p.Y)
	case msg.Action == tea.MouseActionRelease:
		m.ctrl.PointerUp()
	}
}

// startTicking schedules a frame unless one is pending or the simulation
// is idle.
func (m *viewModel) startTicking() tea.Cmd {
	if m.ticking || m.scene == nil {
		return nil
	}
	sim := m.scene.Simulator()
	if sim == nil || !sim.Active() {
		return nil
	}
	m.ticking = true
	return m.nextFrame()
}

func (m *viewModel) nextFrame() tea.Cmd {
	return tea.Tick(m.settings.interval, func(time.Time) tea.Msg { return frameMsg{} })
}

func (m *viewModel) draw() {
	if !m.ready {
		return
	}
	m.bridge.Draw(m.scene, m.ctrl.Transform())
}

func (m *viewModel) teardown() {
	m.ctrl.Teardown()
	if m.scene != nil {
		m.scene.Halt()
	}
}

func (m *viewModel) View() string {
	if !m.ready {
		return StyleDim.Render("starting...")
	}
	var b strings.Builder
	b.WriteString(m.surface.String())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("drag: move node/pan · wheel +/-: zoom · r: reset · space: reheat · q: quit"))
	return b.String()
}

func (m *viewModel) statusLine() string {
	parts := []string{StyleTitle.Render(m.source)}
	if sim := m.scene.Simulator(); sim != nil {
		stats := sim.Stats()
		parts = append(parts,
			StyleNumber.Render(fmt.Sprintf("%d", len(sim.State().Nodes)))+" nodes",
			"tick "+StyleNumber.Render(fmt.Sprintf("%d", stats.Ticks)),
			string(sim.Phase()),
			fmt.Sprintf("α %.3f", sim.Alpha()),
		)
	}
	parts = append(parts, fmt.Sprintf("zoom %.0f%%", m.ctrl.Transform().Scale*100))
	if id, ok := m.ctrl.Dragging(); ok {
		parts = append(parts, StyleSuccess.Render("dragging "+id))
	}
	if m.reloadErr != nil {
		parts = append(parts, StyleError.Render("reload failed: "+errors.UserMessage(m.reloadErr)))
	}
	return strings.Join(parts, StyleDim.Render(" · "))
}
