package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Version is set at build time via ldflags
// Example: go build -ldflags="-X main.Version=v1.2.3"
var Version = "dev"

func main() {
	// Optional .env for YTMUSICDL_* overrides.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		if WantTUI(false) {
			os.Exit(menuCommand())
		}
		printUsage()
		os.Exit(ExitUsageError)
	}

	command := os.Args[1]

	if command == "version" || command == "--version" || command == "-v" {
		fmt.Printf("ytmusic-dl version %s\n", Version)
		os.Exit(ExitSuccess)
	}
	if command == "help" || command == "--help" || command == "-h" {
		printUsage()
		os.Exit(ExitSuccess)
	}

	switch command {
	case "download":
		os.Exit(downloadCommand(os.Args[2:]))
	case "config":
		os.Exit(configCommand(os.Args[2:]))
	case "dedup":
		os.Exit(dedupCommand(os.Args[2:]))
	case "stats":
		os.Exit(statsCommand(os.Args[2:]))
	case "about":
		os.Exit(aboutCommand())
	case "detect":
		os.Exit(detectCommand())
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(ExitUsageError)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `ytmusic-dl - YouTube / YouTube Music playlist downloader

USAGE:
    ytmusic-dl <command> [flags]

COMMANDS:
    download    Download playlists into per-playlist folders
    config      Show or change the persisted configuration
    dedup       Move duplicate tracks into the _duplicates folder
    stats       Show library statistics and recent runs
    detect      List removable volumes (USB sticks)
    about       Show version, dependencies and configuration
    version     Show version information

FLAGS:
    -h, --help    Show this help message

EXAMPLES:
    ytmusic-dl download "https://music.youtube.com/playlist?list=PL..."
    ytmusic-dl download --batch playlists.yaml -o /media/usb/MUSIC
    ytmusic-dl config --set-quality 256
    ytmusic-dl dedup

Run without arguments in a terminal for the interactive menu.
`)
}
