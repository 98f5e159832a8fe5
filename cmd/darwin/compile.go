package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/darwinhq/darwin/pkg/compiler"
	"github.com/darwinhq/darwin/pkg/config"
	"github.com/darwinhq/darwin/pkg/logger"
	"github.com/darwinhq/darwin/pkg/presenter"
	"github.com/darwinhq/darwin/pkg/skillstore"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// CompileConfig holds configuration for the compile command
type CompileConfig struct {
	All          bool
	Watch        bool
	DebounceTime int
}

// NewCompileConfig creates a CompileConfig with default values
func NewCompileConfig() *CompileConfig {
	return &CompileConfig{
		All:          false,
		Watch:        false,
		DebounceTime: 500,
	}
}

// FileEvent represents a file system event with additional metadata
type FileEvent struct {
	Path string
	Op   fsnotify.Op
	Time time.Time
}

var compileCmd = &cobra.Command{
	Use:   "compile [skill]",
	Short: "Compile skill definitions into markdown artifacts",
	Long: `Assemble a skill's module prompts into its compiled markdown
artifact. Pass a skill name to compile one skill, or --all for every
definition in the skills directory. With --watch, definitions are
recompiled whenever their files change.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		cc := getCompileConfigFromFlags(cmd)

		cfg, err := config.FromViper()
		if err != nil {
			presenter.Error(err, "Failed to load configuration")
			os.Exit(1)
		}

		store := skillstore.NewStore(cfg.SkillsDir)
		comp := compiler.New(store, cfg.RegistryPath, cfg.OutputDir)

		if cc.Watch {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-sigCh
				presenter.Warning("\nCancellation requested, shutting down...")
				cancel()
			}()

			runCompileWatch(ctx, cfg, comp, cc)
			return
		}

		switch {
		case cc.All:
			count, err := comp.CompileAll(ctx)
			if err != nil {
				presenter.Error(err, "Failed to compile skills")
				os.Exit(1)
			}
			presenter.Success(fmt.Sprintf("Compiled %d skill(s) to %s", count, cfg.OutputDir))
		case len(args) == 1:
			if err := comp.Compile(ctx, args[0]); err != nil {
				presenter.Error(err, fmt.Sprintf("Failed to compile skill '%s'", args[0]))
				os.Exit(1)
			}
			presenter.Success(fmt.Sprintf("Compiled /%s to %s", args[0], comp.OutputPath(args[0])))
		default:
			presenter.Error(errors.New("no skill specified"), "Provide a skill name or pass --all")
			os.Exit(1)
		}
	},
}

func init() {
	defaults := NewCompileConfig()
	compileCmd.Flags().BoolP("all", "a", defaults.All, "Compile every skill definition")
	compileCmd.Flags().BoolP("watch", "w", defaults.Watch, "Recompile whenever skill definitions change")
	compileCmd.Flags().IntP("debounce", "d", defaults.DebounceTime, "Debounce time in milliseconds for file change events")
	rootCmd.AddCommand(compileCmd)
}

func getCompileConfigFromFlags(cmd *cobra.Command) *CompileConfig {
	cc := NewCompileConfig()
	if all, err := cmd.Flags().GetBool("all"); err == nil {
		cc.All = all
	}
	if watch, err := cmd.Flags().GetBool("watch"); err == nil {
		cc.Watch = watch
	}
	if debounce, err := cmd.Flags().GetInt("debounce"); err == nil && debounce >= 0 {
		cc.DebounceTime = debounce
	}
	return cc
}

func runCompileWatch(ctx context.Context, cfg *config.Config, comp *compiler.SkillCompiler, cc *CompileConfig) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		presenter.Error(err, "Failed to create file watcher")
		logger.G(ctx).WithError(err).Fatal("Failed to create file watcher")
	}
	defer watcher.Close()

	events := make(chan FileEvent)
	debouncedEvents := make(chan FileEvent)

	go debounceFileEvents(ctx, events, debouncedEvents, time.Duration(cc.DebounceTime)*time.Millisecond)

	// Recompile debounced changes
	go func() {
		for {
			select {
			case event, ok := <-debouncedEvents:
				if !ok {
					return
				}
				skill := strings.TrimSuffix(filepath.Base(event.Path), ".yaml")
				logger.G(ctx).WithFields(map[string]interface{}{
					"file":      event.Path,
					"operation": event.Op.String(),
					"skill":     skill,
				}).Debug("Skill definition changed")
				if err := comp.Compile(ctx, skill); err != nil {
					presenter.Error(err, fmt.Sprintf("Failed to recompile /%s", skill))
					continue
				}
				presenter.Success(fmt.Sprintf("Recompiled /%s", skill))
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Ext(event.Name) != ".yaml" {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					events <- FileEvent{
						Path: event.Name,
						Op:   event.Op,
						Time: time.Now(),
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				presenter.Error(err, "File watcher error")
				logger.G(ctx).WithError(err).Error("Error watching skill definitions")
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := watcher.Add(cfg.SkillsDir); err != nil {
		presenter.Error(err, "Failed to watch skills directory")
		logger.G(ctx).WithError(err).Fatal("Failed to watch skills directory")
	}

	presenter.Info(fmt.Sprintf("Watching %s for changes... Press Ctrl+C to stop", cfg.SkillsDir))
	logger.G(ctx).WithField("skills_dir", cfg.SkillsDir).Info("Skill watcher initialized")

	<-ctx.Done()
}

// Debounce file events to prevent processing multiple rapid changes to the same file
func debounceFileEvents(ctx context.Context, input <-chan FileEvent, output chan<- FileEvent, delay time.Duration) {
	var pending = make(map[string]*time.Timer)

	for {
		select {
		case event, ok := <-input:
			if !ok {
				for _, timer := range pending {
					timer.Stop()
				}
				return
			}
			if timer, exists := pending[event.Path]; exists {
				timer.Stop()
				delete(pending, event.Path)
			}

			eventCopy := event
			pending[event.Path] = time.AfterFunc(delay, func() {
				select {
				case output <- eventCopy:
					delete(pending, eventCopy.Path)
				case <-ctx.Done():
					delete(pending, eventCopy.Path)
				}
			})
		case <-ctx.Done():
			for _, timer := range pending {
				timer.Stop()
			}
			return
		}
	}
}
