package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hyperav/hyperviz/internal/core"
	"github.com/hyperav/hyperviz/internal/geometry"
	"github.com/hyperav/hyperviz/internal/player"
	"github.com/hyperav/hyperviz/internal/projection"
	"github.com/hyperav/hyperviz/internal/render"
	"github.com/hyperav/hyperviz/internal/util"
)

// reservedRows is the screen area below the visual: track line,
// progress line, status line, help line.
const reservedRows = 4

type tickMsg time.Time
type playbackEndedMsg struct{}

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Model is the Bubbletea model wrapping one visualizer core and an
// optional track player.
type Model struct {
	core     *core.Core
	player   *player.Player // nil for a silent, idle-driven run
	metadata player.TrackInfo
	help     help.Model

	tick     time.Duration
	elapsed  time.Duration
	duration time.Duration
	volume   float64
	paused   bool
	finished bool
	width    int
	height   int
	quitting bool
}

// New wraps an initialized core. p may be nil when no track is loaded.
func New(c *core.Core, p *player.Player, meta player.TrackInfo, fps int) Model {
	if fps <= 0 {
		fps = 30
	}
	m := Model{
		core:     c,
		player:   p,
		metadata: meta,
		help:     help.New(),
		tick:     time.Second / time.Duration(fps),
	}
	if p != nil {
		m.duration = p.Duration()
		m.volume = p.Volume()
	}
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.tick), tea.SetWindowTitle(windowTitle(m.metadata.Title))}
	if m.player != nil {
		cmds = append(cmds, checkDone(m.player))
	}
	return tea.Batch(cmds...)
}

func checkDone(p *player.Player) tea.Cmd {
	return func() tea.Msg {
		<-p.Done()
		return playbackEndedMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		if m.player != nil {
			m.elapsed = m.player.Position()
			m.volume = m.player.Volume()
			m.paused = m.player.Paused()
		}
		return m, tickCmd(m.tick)

	case playbackEndedMsg:
		m.finished = true
		m.elapsed = m.duration
		return m, nil

	case tea.ResumeMsg:
		if err := m.core.NotifyContextRestored(); err == nil {
			m.core.Start()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vh := msg.Height - reservedRows
		if vh < 1 {
			vh = 1
		}
		m.core.SetViewport(msg.Width, vh)
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		if m.player != nil {
			m.player.Close()
		}
		m.core.Dispose()
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)

	case key.Matches(msg, keys.Pause):
		if m.player != nil {
			m.player.TogglePause()
			m.paused = m.player.Paused()
		}
		return m, nil

	case key.Matches(msg, keys.Geometry):
		m.core.SetGeometry(nextKind(m.core.Geometry()), 0)
		return m, nil

	case key.Matches(msg, keys.Projection):
		cfg := m.core.Projection()
		if cfg.Method == projection.Perspective {
			cfg.Method = projection.Stereographic
		} else {
			cfg.Method = projection.Perspective
		}
		m.core.SetProjection(cfg)
		return m, nil

	case key.Matches(msg, keys.Effect):
		if m.core.Effect() == render.EffectWireframe {
			m.core.SetEffect(render.EffectGlow)
		} else {
			m.core.SetEffect(render.EffectWireframe)
		}
		return m, nil

	case key.Matches(msg, keys.Intensity):
		m.core.SetIntensity(m.core.Intensity() + 0.1)
		return m, nil

	case key.Matches(msg, keys.IntensityDn):
		m.core.SetIntensity(m.core.Intensity() - 0.1)
		return m, nil

	case key.Matches(msg, keys.Volume):
		if m.player != nil {
			m.player.AdjustVolume(0.05)
			m.volume = m.player.Volume()
		}
		return m, nil

	case key.Matches(msg, keys.VolumeDn):
		if m.player != nil {
			m.player.AdjustVolume(-0.05)
			m.volume = m.player.Volume()
		}
		return m, nil

	case key.Matches(msg, keys.Suspend):
		m.core.NotifyContextLost()
		return m, tea.Suspend
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	w := m.width
	if w < 30 {
		w = 50
	}

	out := m.core.Frame()

	title := titleStyle.Render(m.metadata.Title)
	if m.metadata.Artist != "" {
		title += "  " + artistStyle.Render(m.metadata.Artist)
	}

	track := ""
	if m.player != nil {
		elapsedStr := util.FormatDuration(m.elapsed)
		durationStr := util.FormatDuration(m.duration)
		barWidth := w - len(elapsedStr) - len(durationStr) - len("vol 100%") - 8
		bar := renderProgressBar(m.elapsed.Seconds(), m.duration.Seconds(), barWidth)
		track = fmt.Sprintf("%s %s %s  %s",
			timeStyle.Render(elapsedStr), bar, timeStyle.Render(durationStr),
			timeStyle.Render(fmt.Sprintf("vol %d%%", int(m.volume*100+0.5))))
	} else {
		track = timeStyle.Render("no track loaded, idle drive")
	}

	state := "▶"
	switch {
	case m.finished:
		state = "■ finished"
	case m.paused:
		state = "❚❚ paused"
	}
	status := statusStyle.Render(fmt.Sprintf("%s  %s  %s  %s  int %d%%  %.1f fps  [%s]",
		state,
		m.core.Geometry(),
		m.core.Projection().Method,
		m.core.Effect(),
		int(m.core.Intensity()*100),
		m.core.FPS(),
		m.core.Status()))

	return out + "\n" +
		" " + title + "\n" +
		" " + track + "\n" +
		" " + status + "\n" +
		" " + helpStyle.Render(m.help.View(keys))
}

func nextKind(k geometry.Kind) geometry.Kind {
	kinds := geometry.Kinds()
	for i, cur := range kinds {
		if cur == k {
			return kinds[(i+1)%len(kinds)]
		}
	}
	return kinds[0]
}

func windowTitle(title string) string {
	if title == "" {
		return "hyperviz"
	}
	return title + " — hyperviz"
}
