package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rmedina/ytmusic-dl/download"
	"github.com/rmedina/ytmusic-dl/download/audio"
	"github.com/rmedina/ytmusic-dl/download/cache"
	"github.com/rmedina/ytmusic-dl/download/config"
	"github.com/rmedina/ytmusic-dl/download/dedupe"
	"github.com/rmedina/ytmusic-dl/download/history"
	"github.com/rmedina/ytmusic-dl/download/logging"
	"github.com/rmedina/ytmusic-dl/download/platform"
	"github.com/rmedina/ytmusic-dl/download/playlist"
	"github.com/rmedina/ytmusic-dl/download/stats"
)

// Exit codes shared by all commands.
const (
	ExitSuccess     = 0
	ExitConfigError = 1
	ExitUsageError  = 2
	ExitFilesystem  = 3
	ExitInterrupted = 4
)

// downloadCommand downloads one or more playlists. URLs come from the
// command line and/or a batch file; per-track skips never affect the exit
// code.
func downloadCommand(args []string) int {
	fs := flag.NewFlagSet("download", flag.ContinueOnError)
	output := fs.String("o", "", "Output base folder (default: configured output_base)")
	fs.StringVar(output, "output", "", "Output base folder")
	batch := fs.String("batch", "", "YAML file with a playlists: list")
	noM3U := fs.Bool("no-m3u", false, "Skip .m3u playlist generation for this run")
	noTUI := fs.Bool("no-tui", false, "Disable the terminal UI")
	noDedup := fs.Bool("no-dedup", false, "Skip the duplicate pass after the run")
	if err := fs.Parse(args); err != nil {
		return ExitUsageError
	}

	cfg := config.Load(config.DefaultPath())
	if *output != "" {
		if err := cfg.Set("output", *output); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid output folder: %v\n", err)
			return ExitUsageError
		}
	}
	if *noM3U {
		cfg.GenerateM3U = false
	}

	targets, code := collectTargets(fs.Args(), *batch)
	if code != ExitSuccess {
		return code
	}

	if audio.FFmpegPath() == "" {
		fmt.Fprintln(os.Stderr, "ffmpeg not found on PATH. It is required for audio conversion.")
		return ExitConfigError
	}
	provider, err := audio.NewProvider(&audio.Config{
		OutputFormat: string(cfg.AudioFormat),
		Bitrate:      cfg.AudioQuality,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Audio provider error: %v\n", err)
		return ExitConfigError
	}
	if provider.ToolPath() == "" {
		fmt.Fprintln(os.Stderr, "yt-dlp not found on PATH. Install it and retry.")
		return ExitConfigError
	}

	runDir, logPath, jsonLogPath, err := CreateRunDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating log directory: %v\n", err)
		return ExitFilesystem
	}

	runLog, err := logging.NewLogger(jsonLogPath, "download")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening run log: %v\n", err)
		return ExitFilesystem
	}
	defer runLog.Close()

	tracker, err := history.NewTracker(history.DefaultDir(), history.DefaultRetention)
	if err != nil {
		log.Printf("WARN: history_unavailable error=%v", err)
		tracker = nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var summary *download.RunSummary
	if WantTUI(*noTUI) {
		summary, err = runDownloadWithTUI(ctx, cfg, provider, tracker, runLog, targets, logPath)
	} else {
		summary, err = runDownloadPlain(ctx, cfg, provider, tracker, runLog, targets, logPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Download failed: %v\n", err)
		return ExitFilesystem
	}

	if !*noDedup && !summary.Interrupted {
		runDedupPass(summary.OutputBase)
	}

	printRunSummary(summary, runDir)
	switch {
	case summary.Interrupted:
		return ExitInterrupted
	case summary.Failed > 0 && summary.Failed == len(summary.Playlists):
		return ExitFilesystem
	default:
		return ExitSuccess
	}
}

// collectTargets merges positional URLs with the batch file and normalizes
// them, reporting each rejected input. Batch entries carry a per-playlist
// m3u override.
func collectTargets(positional []string, batchPath string) ([]download.Target, int) {
	raw := make([]download.Target, 0, len(positional))
	for _, url := range positional {
		raw = append(raw, download.Target{URL: url})
	}
	if batchPath != "" {
		sources, err := config.LoadSources(batchPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading batch file: %v\n", err)
			return nil, ExitUsageError
		}
		for _, source := range sources {
			raw = append(raw, download.Target{URL: source.URL, M3U: source.CreateM3U})
		}
	}
	if len(raw) == 0 {
		fmt.Fprintln(os.Stderr, "No playlist URLs given. Pass URLs or --batch FILE.")
		return nil, ExitUsageError
	}

	var targets []download.Target
	for _, target := range raw {
		url, err := playlist.NormalizeURL(target.URL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Skipping: %v\n", err)
			continue
		}
		target.URL = url
		targets = append(targets, target)
	}
	if len(targets) == 0 {
		fmt.Fprintln(os.Stderr, "No valid playlist URLs.")
		return nil, ExitUsageError
	}
	return targets, ExitSuccess
}

func runDownloadPlain(ctx context.Context, cfg *config.Config, provider playlist.Fetcher, tracker *history.Tracker, runLog *logging.Logger, targets []download.Target, logPath string) (*download.RunSummary, error) {
	tee, err := NewLogTeeWriter(logPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer tee.Close()
	restore := RedirectLogToFile(io.MultiWriter(os.Stderr, tee))
	defer restore()

	svc, err := download.NewService(cfg, provider, tracker, runLog, progressPrinter())
	if err != nil {
		return nil, err
	}
	return svc.Run(ctx, targets)
}

// progressPrinter logs terminal track states in the plain (non-TUI) mode.
func progressPrinter() playlist.ProgressFunc {
	return func(ev playlist.Event) {
		switch ev.Status {
		case playlist.TrackStatusDownloading:
			log.Printf("INFO: track_start index=%d/%d title=%q", ev.Index, ev.Total, ev.Title)
		case playlist.TrackStatusSkipped:
			log.Printf("INFO: track_skip index=%d/%d title=%q reason=%s", ev.Index, ev.Total, ev.Title, ev.Reason)
		}
	}
}

// hashCachePath keeps the dedup hash cache next to the library it indexes,
// so it travels with a removable volume.
func hashCachePath(base string) string {
	return filepath.Join(base, ".hash_cache.json")
}

// runDedupPass moves duplicates after a completed run.
func runDedupPass(base string) {
	hc := cache.OpenHashCache(hashCachePath(base))
	result, err := dedupe.ScanWithCache(base, hc)
	if err != nil {
		log.Printf("WARN: dedup_scan_failed error=%v", err)
		return
	}
	if err := hc.Save(); err != nil {
		log.Printf("WARN: hash_cache_save_failed error=%v", err)
	}
	if result.Duplicates() == 0 {
		return
	}
	moved, err := dedupe.MoveDuplicates(base, result)
	if err != nil {
		log.Printf("WARN: dedup_move_failed error=%v", err)
		return
	}
	refreshM3Us(moved.Folders)
	fmt.Printf("Moved %d duplicate file(s) to %s\n", moved.Moved, moved.Target)
}

// refreshM3Us regenerates the playlist file of every folder that lost
// tracks to the duplicate pass, so each .m3u lists exactly the files still
// present. Folders without an .m3u are left alone.
func refreshM3Us(folders []string) {
	for _, dir := range folders {
		m3u := filepath.Join(dir, filepath.Base(dir)+".m3u")
		if _, err := os.Stat(m3u); err != nil {
			continue
		}
		if _, err := playlist.WriteM3U(dir); err != nil {
			log.Printf("WARN: m3u_refresh_failed dir=%s error=%v", dir, err)
		}
	}
}

func printRunSummary(summary *download.RunSummary, runDir string) {
	fmt.Println()
	fmt.Println("Download summary")
	fmt.Printf("  Output:     %s\n", summary.OutputBase)
	fmt.Printf("  Playlists:  %d (%d failed)\n", len(summary.Playlists), summary.Failed)
	fmt.Printf("  Downloaded: %d\n", summary.Downloaded)
	fmt.Printf("  Skipped:    %d\n", summary.Skipped)
	fmt.Printf("  Errored:    %d\n", summary.Errored)
	fmt.Printf("  Elapsed:    %s\n", summary.Elapsed.Round(time.Second))
	fmt.Printf("  Logs:       %s\n", runDir)
	if summary.Interrupted {
		fmt.Println("  Run was interrupted; partial downloads were kept.")
	}
}

// configCommand shows or mutates the persisted configuration.
func configCommand(args []string) int {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	show := fs.Bool("show", false, "Show current configuration")
	setOutput := fs.String("set-output", "", "Set the default output folder")
	setQuality := fs.String("set-quality", "", "Set audio quality (128, 192, 256, 320)")
	setFormat := fs.String("set-format", "", "Set audio format (mp3, m4a, opus)")
	setM3U := fs.Bool("set-m3u", false, "Enable .m3u generation")
	unsetM3U := fs.Bool("unset-m3u", false, "Disable .m3u generation")
	interactive := fs.Bool("interactive", false, "Interactive configuration")
	fs.BoolVar(interactive, "i", *interactive, "Interactive configuration")
	if err := fs.Parse(args); err != nil {
		return ExitUsageError
	}

	path := config.DefaultPath()
	cfg := config.Load(path)

	if *interactive {
		return interactiveConfig(path, cfg)
	}

	changed := false
	set := func(field, value string) bool {
		if err := cfg.Set(field, value); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return false
		}
		changed = true
		return true
	}
	if *setOutput != "" && !set("output", *setOutput) {
		return ExitUsageError
	}
	if *setQuality != "" && !set("quality", *setQuality) {
		return ExitUsageError
	}
	if *setFormat != "" && !set("format", *setFormat) {
		return ExitUsageError
	}
	if *setM3U && *unsetM3U {
		fmt.Fprintln(os.Stderr, "--set-m3u and --unset-m3u are mutually exclusive")
		return ExitUsageError
	}
	if *setM3U {
		cfg.GenerateM3U = true
		changed = true
	}
	if *unsetM3U {
		cfg.GenerateM3U = false
		changed = true
	}

	if changed {
		if err := config.Save(path, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving configuration: %v\n", err)
			return ExitConfigError
		}
		fmt.Println("Configuration saved.")
	}
	if *show || !changed {
		printConfig(path, cfg)
	}
	return ExitSuccess
}

// interactiveConfig walks every field with prompts, empty input keeping the
// current value.
func interactiveConfig(path string, cfg *config.Config) int {
	reader := bufio.NewReader(os.Stdin)
	prompt := func(label, current string) string {
		fmt.Printf("%s [%s]: ", label, current)
		line, err := reader.ReadString('\n')
		if err != nil {
			return ""
		}
		return strings.TrimSpace(line)
	}

	if volumes := platform.RemovableVolumes(); len(volumes) > 0 {
		fmt.Println("Detected removable volumes:")
		for _, v := range volumes {
			fmt.Printf("  %s\n", v.Path)
		}
	}

	fields := []struct {
		label   string
		field   string
		current string
	}{
		{"Output folder", "output", cfg.OutputBase},
		{"Audio format (mp3, m4a, opus)", "format", string(cfg.AudioFormat)},
		{"Audio quality (128, 192, 256, 320)", "quality", cfg.AudioQuality},
		{"Generate .m3u playlists (true/false)", "m3u", fmt.Sprintf("%t", cfg.GenerateM3U)},
	}
	for _, f := range fields {
		for {
			value := prompt(f.label, f.current)
			if value == "" {
				break
			}
			if err := cfg.Set(f.field, value); err != nil {
				fmt.Fprintf(os.Stderr, "%v\n", err)
				continue
			}
			break
		}
	}

	if err := config.Save(path, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving configuration: %v\n", err)
		return ExitConfigError
	}
	fmt.Println("Configuration saved.")
	printConfig(path, cfg)
	return ExitSuccess
}

func printConfig(path string, cfg *config.Config) {
	fmt.Printf("Configuration (%s)\n", path)
	fmt.Printf("  output_base:   %s\n", cfg.OutputBase)
	fmt.Printf("  audio_format:  %s\n", cfg.AudioFormat)
	fmt.Printf("  audio_quality: %s kbps\n", cfg.AudioQuality)
	fmt.Printf("  generate_m3u:  %t\n", cfg.GenerateM3U)
}

// dedupCommand runs the duplicate pass over the library.
func dedupCommand(args []string) int {
	fs := flag.NewFlagSet("dedup", flag.ContinueOnError)
	output := fs.String("o", "", "Library base folder (default: configured output_base)")
	fs.StringVar(output, "output", "", "Library base folder")
	moveTo := fs.String("move-to", dedupe.DuplicatesFolder, "Destination folder name for moved duplicates (must start with _)")
	if err := fs.Parse(args); err != nil {
		return ExitUsageError
	}

	base, code := resolveBase(*output)
	if code != ExitSuccess {
		return code
	}

	hc := cache.OpenHashCache(hashCachePath(base))
	result, err := dedupe.ScanWithCache(base, hc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Scan failed: %v\n", err)
		return ExitFilesystem
	}
	if err := hc.Save(); err != nil {
		log.Printf("WARN: hash_cache_save_failed error=%v", err)
	}
	fmt.Printf("Scanned %d file(s) under %s\n", result.Scanned, base)
	if result.Duplicates() == 0 {
		fmt.Println("No duplicates found.")
		return ExitSuccess
	}

	for _, group := range result.Groups {
		fmt.Printf("  keep   %s\n", group.Keep)
		for _, extra := range group.Extras {
			fmt.Printf("  move   %s\n", extra)
		}
	}
	moved, err := dedupe.MoveDuplicatesTo(base, *moveTo, result)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Move failed: %v\n", err)
		if !strings.HasPrefix(*moveTo, "_") {
			return ExitUsageError
		}
		return ExitFilesystem
	}
	refreshM3Us(moved.Folders)
	fmt.Printf("Moved %d duplicate file(s) to %s", moved.Moved, moved.Target)
	if moved.Errors > 0 {
		fmt.Printf(" (%d failed)", moved.Errors)
	}
	fmt.Println()
	return ExitSuccess
}

// statsCommand prints library statistics and recent runs.
func statsCommand(args []string) int {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	output := fs.String("o", "", "Library base folder (default: configured output_base)")
	fs.StringVar(output, "output", "", "Library base folder")
	if err := fs.Parse(args); err != nil {
		return ExitUsageError
	}

	base, code := resolveBase(*output)
	if code != ExitSuccess {
		return code
	}

	library, err := stats.Collect(base)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Stats failed: %v\n", err)
		return ExitFilesystem
	}

	fmt.Printf("Library statistics (%s)\n", library.BasePath)
	fmt.Printf("  Tracks:    %d\n", library.TotalFiles)
	fmt.Printf("  Size:      %.1f MB\n", float64(library.TotalBytes)/(1024*1024))
	fmt.Printf("  Playlists: %d\n", library.PlaylistCount)
	fmt.Printf("  Artists:   %d\n", library.DistinctArtists)
	if library.TotalFiles > 0 {
		fmt.Printf("  Average:   %.1f MB/track\n", float64(library.AverageBytes())/(1024*1024))
	}
	for _, pl := range library.Playlists {
		marker := " "
		if pl.HasM3U {
			marker = "♪"
		}
		fmt.Printf("  %s %-40s %4d track(s) %8.1f MB\n", marker, pl.Name, pl.TrackCount, float64(pl.TotalBytes)/(1024*1024))
	}

	printRecentRuns()
	return ExitSuccess
}

func printRecentRuns() {
	tracker, err := history.NewTracker(history.DefaultDir(), history.DefaultRetention)
	if err != nil {
		return
	}
	records, err := tracker.List()
	if err != nil || len(records) == 0 {
		return
	}
	if len(records) > 5 {
		records = records[:5]
	}
	fmt.Println("\nRecent runs")
	for _, record := range records {
		downloaded, skipped, errored := record.Totals()
		fmt.Printf("  %s  %-11s %d downloaded, %d skipped, %d errored\n",
			record.StartedAt.Format("2006-01-02 15:04"), record.State, downloaded, skipped, errored)
	}
}

// aboutCommand prints version, dependency status, and configuration.
func aboutCommand() int {
	fmt.Printf("ytmusic-dl %s\n", Version)
	fmt.Println("YouTube / YouTube Music playlist downloader for USB sticks and car stereos.")
	fmt.Println()
	printDependencyStatus()
	fmt.Println()
	printConfig(config.DefaultPath(), config.Load(config.DefaultPath()))
	return ExitSuccess
}

// printDependencyStatus reports whether the external tools resolve on PATH.
func printDependencyStatus() {
	provider, _ := audio.NewProvider(nil)
	if path := provider.ToolPath(); path != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		version, err := provider.Version(ctx)
		cancel()
		if err != nil {
			version = "unknown"
		}
		fmt.Printf("  yt-dlp: %s (%s)\n", version, path)
	} else {
		fmt.Println("  yt-dlp: NOT FOUND (required)")
	}
	if path := audio.FFmpegPath(); path != "" {
		fmt.Printf("  ffmpeg: %s\n", path)
	} else {
		fmt.Println("  ffmpeg: NOT FOUND (required)")
	}
}

// detectCommand lists candidate removable volumes.
func detectCommand() int {
	volumes := platform.RemovableVolumes()
	if len(volumes) == 0 {
		fmt.Println("No removable volumes detected.")
		return ExitSuccess
	}
	fmt.Println("Removable volumes:")
	for i, volume := range volumes {
		free := ""
		if bytes, err := platform.FreeSpace(volume.Path); err == nil {
			free = fmt.Sprintf("  (%.1f GB free)", float64(bytes)/(1024*1024*1024))
		}
		fmt.Printf("  %d. %s%s\n", i+1, volume.Path, free)
	}
	return ExitSuccess
}

// resolveBase picks the library base: explicit flag first, then the
// configured output_base. The folder must exist.
func resolveBase(flagValue string) (string, int) {
	var base string
	if flagValue != "" {
		expanded, err := config.ExpandPath(flagValue)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid folder: %v\n", err)
			return "", ExitUsageError
		}
		base = expanded
	} else {
		cfg := config.Load(config.DefaultPath())
		expanded, err := config.ExpandPath(cfg.OutputBase)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid configured output_base: %v\n", err)
			return "", ExitConfigError
		}
		base = expanded
	}

	if _, err := os.Stat(base); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "Folder does not exist: %s\nRun a download first or check the configuration.\n", base)
		} else {
			fmt.Fprintf(os.Stderr, "Cannot access folder: %v\n", err)
		}
		return "", ExitFilesystem
	}
	return base, ExitSuccess
}
