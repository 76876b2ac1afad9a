package main

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rmedina/ytmusic-dl/download"
	"github.com/rmedina/ytmusic-dl/download/config"
	"github.com/rmedina/ytmusic-dl/download/history"
	"github.com/rmedina/ytmusic-dl/download/logging"
	"github.com/rmedina/ytmusic-dl/download/playlist"
)

const maxErrorsInTUI = 20

// runMsg is a message from the run service or the log tee.
type runMsg struct {
	Event   *playlist.Event
	LogLine string
	Done    bool
}

// runModel is the Bubble Tea model for the download TUI.
type runModel struct {
	downloaded   int
	skipped      int
	errored      int
	totalTracks  int
	playlists    int
	currentTrack string
	errors       []string
	logPath      string
	stopping     bool
	done         bool
	cancel       context.CancelFunc
	ch           chan runMsg
	width        int
	height       int
}

func newRunModel(logPath string, playlists int, ch chan runMsg, cancel context.CancelFunc) *runModel {
	return &runModel{
		playlists: playlists,
		logPath:   logPath,
		errors:    make([]string, 0, maxErrorsInTUI),
		ch:        ch,
		cancel:    cancel,
	}
}

func (m *runModel) Init() tea.Cmd {
	return m.waitForMsg()
}

func (m *runModel) waitForMsg() tea.Cmd {
	return func() tea.Msg {
		return <-m.ch
	}
}

func (m *runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, m.waitForMsg()
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			if !m.done && m.cancel != nil {
				m.stopping = true
				m.cancel()
			}
			return m, m.waitForMsg()
		case "q":
			if m.done {
				return m, tea.Quit
			}
		}
		return m, m.waitForMsg()
	case runMsg:
		if msg.LogLine != "" {
			m.pushError(msg.LogLine)
			return m, m.waitForMsg()
		}
		if msg.Event != nil {
			ev := msg.Event
			m.totalTracks = ev.Total
			switch ev.Status {
			case playlist.TrackStatusDownloading:
				m.currentTrack = fmt.Sprintf("%d/%d %s", ev.Index, ev.Total, ev.Title)
			case playlist.TrackStatusDownloaded:
				m.downloaded++
				m.currentTrack = ""
			case playlist.TrackStatusSkipped:
				m.skipped++
				m.pushError(fmt.Sprintf("%s: %s", ev.Title, ev.Reason.Reason()))
				m.currentTrack = ""
			case playlist.TrackStatusErrored:
				m.errored++
				m.pushError(fmt.Sprintf("%s: %s", ev.Title, ev.Reason.Reason()))
				m.currentTrack = ""
			}
			return m, m.waitForMsg()
		}
		if msg.Done {
			m.done = true
			return m, tea.Quit
		}
		return m, m.waitForMsg()
	default:
		return m, m.waitForMsg()
	}
}

func (m *runModel) pushError(line string) {
	m.errors = append(m.errors, line)
	if len(m.errors) > maxErrorsInTUI {
		m.errors = m.errors[len(m.errors)-maxErrorsInTUI:]
	}
}

func (m *runModel) View() string {
	var b strings.Builder
	b.WriteString("  ytmusic-dl download\n\n")
	b.WriteString(fmt.Sprintf("  Playlists: %d  Downloaded: %d  Skipped: %d  Errored: %d\n",
		m.playlists, m.downloaded, m.skipped, m.errored))
	if m.currentTrack != "" {
		b.WriteString("  Current: " + truncate(m.currentTrack, 60) + "\n")
	}
	b.WriteString("  Log file: " + m.logPath + "\n\n")
	if len(m.errors) > 0 {
		b.WriteString("  Recent problems:\n")
		start := 0
		if len(m.errors) > 10 {
			start = len(m.errors) - 10
		}
		for i := start; i < len(m.errors); i++ {
			b.WriteString("    • " + truncate(m.errors[i], 70) + "\n")
		}
	}
	if m.stopping && !m.done {
		b.WriteString("\n  Stopping after the current track...\n")
	}
	if m.done {
		b.WriteString("\n  Press q to quit.\n")
	}
	return b.String()
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// runDownloadWithTUI runs the service in a goroutine and shows progress in
// a Bubble Tea program. Log output goes to the run log file; ERROR/WARN
// lines surface in the TUI.
func runDownloadWithTUI(ctx context.Context, cfg *config.Config, provider playlist.Fetcher, tracker *history.Tracker, runLog *logging.Logger, targets []download.Target, logPath string) (*download.RunSummary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := make(chan runMsg, 64)
	errCh := make(chan string, 64)

	tee, err := NewLogTeeWriter(logPath, errCh)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer tee.Close()
	restore := RedirectLogToFile(tee)
	defer restore()

	progress := func(ev playlist.Event) {
		ch <- runMsg{Event: &ev}
	}
	svc, err := download.NewService(cfg, provider, tracker, runLog, progress)
	if err != nil {
		return nil, err
	}

	var summary *download.RunSummary
	var runErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		summary, runErr = svc.Run(ctx, targets)
		ch <- runMsg{Done: true}
	}()
	go func() {
		for line := range errCh {
			select {
			case ch <- runMsg{LogLine: line}:
			case <-done:
			}
		}
	}()

	model := newRunModel(logPath, len(targets), ch, cancel)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, teaErr := p.Run()

	// Keep draining progress messages so the service goroutine can finish.
	go func() {
		for {
			select {
			case <-ch:
			case <-done:
				return
			}
		}
	}()
	if teaErr != nil {
		cancel()
	}
	<-done

	// The run is over: detach the logger, then close the channel so the
	// forwarding goroutine exits.
	restore()
	tee.Close()
	close(errCh)

	if runErr != nil {
		return summary, runErr
	}
	return summary, teaErr
}
