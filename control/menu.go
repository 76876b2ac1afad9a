package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// menuItem is one entry in the interactive menu.
type menuItem struct {
	label  string
	action string
}

var menuItems = []menuItem{
	{"Download playlists", "download"},
	{"Check dependencies", "deps"},
	{"Detect USB / removable volumes", "detect"},
	{"Show configuration", "config-show"},
	{"Edit configuration", "config-edit"},
	{"Deduplicate library", "dedup"},
	{"Library statistics", "stats"},
	{"About", "about"},
	{"Quit", "quit"},
}

// menuModel is the Bubble Tea model for the main menu.
type menuModel struct {
	cursor int
	choice string
}

func (m *menuModel) Init() tea.Cmd {
	return nil
}

func (m *menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.choice = "quit"
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(menuItems)-1 {
				m.cursor++
			}
		case "enter":
			m.choice = menuItems[m.cursor].action
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *menuModel) View() string {
	var b strings.Builder
	b.WriteString("  ytmusic-dl " + Version + "\n")
	b.WriteString("  YouTube / YouTube Music playlist downloader\n\n")
	for i, item := range menuItems {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		b.WriteString("  " + cursor + item.label + "\n")
	}
	b.WriteString("\n  ↑/↓ move, enter select, q quit\n")
	return b.String()
}

// menuCommand shows the interactive menu and dispatches the selection.
// The menu loops until the user quits.
func menuCommand() int {
	for {
		model := &menuModel{}
		p := tea.NewProgram(model)
		finalModel, err := p.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Menu error: %v\n", err)
			return ExitUsageError
		}
		m, ok := finalModel.(*menuModel)
		if !ok || m.choice == "quit" || m.choice == "" {
			return ExitSuccess
		}

		code := runMenuAction(m.choice)
		if code != ExitSuccess {
			return code
		}
		fmt.Print("\nPress enter to return to the menu...")
		bufio.NewReader(os.Stdin).ReadString('\n')
	}
}

func runMenuAction(action string) int {
	switch action {
	case "download":
		urls := promptURLs()
		if len(urls) == 0 {
			fmt.Println("No URLs entered.")
			return ExitSuccess
		}
		return downloadCommand(urls)
	case "deps":
		printDependencyStatus()
		return ExitSuccess
	case "detect":
		return detectCommand()
	case "config-show":
		return configCommand([]string{"--show"})
	case "config-edit":
		return configCommand([]string{"--interactive"})
	case "dedup":
		return dedupCommand(nil)
	case "stats":
		return statsCommand(nil)
	case "about":
		return aboutCommand()
	default:
		return ExitSuccess
	}
}

// promptURLs reads playlist URLs from stdin, one per line, until an empty
// line.
func promptURLs() []string {
	fmt.Println("Enter playlist URLs, one per line. Empty line to start.")
	reader := bufio.NewReader(os.Stdin)
	var urls []string
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		urls = append(urls, line)
	}
	return urls
}
