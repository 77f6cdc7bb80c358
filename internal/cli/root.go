// Package cli wires configuration, git, the diff parser, storage, the
// change watcher and the server into the diffdeck command.
package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/diffdeck/diffdeck/internal/config"
	"github.com/diffdeck/diffdeck/internal/diff"
	"github.com/diffdeck/diffdeck/internal/git"
	"github.com/diffdeck/diffdeck/internal/server"
	"github.com/diffdeck/diffdeck/internal/storage"
	"github.com/diffdeck/diffdeck/internal/watch"
)

const version = "0.3.0"

// Exit codes.
const (
	ExitSuccess      = 0
	ExitUsageError   = 2
	ExitRuntimeError = 4
)

var (
	flagAddr             string
	flagConfig           string
	flagIgnoreWhitespace bool
	flagDebounceMs       int
	flagStrict           bool
	flagNoComments       bool
)

var rootCmd = &cobra.Command{
	Use:   "diffdeck [target] [base]",
	Short: "Local git diff review in the browser",
	Long: `Diffdeck parses a git diff into a structured model, serves it over a
local HTTP/WebSocket server and pushes reload notifications when the
repository changes.

Targets:
  working   unstaged changes (default)
  staged    index against HEAD
  .         all uncommitted changes against HEAD
  <ref>     one commit (<ref>^..<ref>), or a range with an explicit base
  -         read a unified diff from stdin`,
	Args:    cobra.MaximumNArgs(2),
	Version: version,
	RunE:    runServe,
}

// serveStarted distinguishes cobra rejecting the invocation (bad flags,
// too many arguments) from a failure inside the command itself.
var serveStarted bool

// Run executes the root command and returns an exit code.
func Run() int {
	rootCmd.Flags().StringVar(&flagAddr, "addr", "", "listen address (host:port)")
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.Flags().BoolVarP(&flagIgnoreWhitespace, "ignore-whitespace", "w", false, "ignore whitespace-only changes")
	rootCmd.Flags().IntVar(&flagDebounceMs, "debounce-ms", 0, "quiet window for change detection")
	rootCmd.Flags().BoolVar(&flagStrict, "strict", false, "fail on unresolvable diff blocks")
	rootCmd.Flags().BoolVar(&flagNoComments, "no-comments", false, "disable the review comment store")

	rootCmd.SilenceUsage = true
	if err := rootCmd.Execute(); err != nil {
		if !serveStarted {
			return ExitUsageError
		}
		return ExitRuntimeError
	}
	return ExitSuccess
}

func runServe(cmd *cobra.Command, args []string) error {
	serveStarted = true
	target := diff.TargetWorking
	base := ""
	if len(args) > 0 {
		target = args[0]
	}
	if len(args) > 1 {
		base = args[1]
	}

	cfgPath := flagConfig
	if cfgPath == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return err
		}
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	// Flags take precedence over the config file.
	if flagAddr != "" {
		cfg.Addr = flagAddr
	}
	if flagDebounceMs > 0 {
		cfg.DebounceMs = flagDebounceMs
	}
	if flagStrict {
		cfg.StrictParse = true
	}

	root, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determine working directory: %w", err)
	}

	gitExec := git.NewCLI(root, int64(cfg.GitMaxOutputMB)*1024*1024)
	parser := diff.NewParser(gitExec)
	parser.Strict = cfg.StrictParse

	mode := modeForTarget(target)
	bc := server.NewBroadcaster(string(mode), mode.ChangeType())

	var store *storage.Store
	if !flagNoComments && cfg.CommentDB != "" {
		store, err = storage.NewStore(cfg.CommentDB)
		if err != nil {
			// Comments are a convenience; the review itself must not
			// depend on them.
			log.Printf("[CLI] Comment store unavailable: %v", err)
			store = nil
		} else {
			defer store.Close()
		}
	}

	srv := server.New(cfg.Addr, string(mode), parser, store, bc, server.DiffOptions{
		Target:           target,
		Base:             base,
		IgnoreWhitespace: flagIgnoreWhitespace,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	patchMode := target == "-"
	if patchMode {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read patch from stdin: %w", err)
		}
		resp, err := parser.ParsePatch(string(raw))
		if err != nil {
			return err
		}
		srv.ServePatch(resp)
	}

	if err := srv.Start(); err != nil {
		return err
	}

	if !patchMode {
		watcher := watch.New(watch.Config{
			Root:         root,
			Mode:         mode,
			Debounce:     time.Duration(cfg.DebounceMs) * time.Millisecond,
			IgnoreGlobs:  cfg.IgnoreGlobs,
			Git:          gitExec,
			OnInvalidate: srv.Invalidate,
			Notifier:     bc,
		})
		if err := watcher.Start(ctx); err != nil {
			return err
		}
		defer watcher.Stop()
	}

	log.Printf("[CLI] Reviewing %q (mode %s) at http://%s", target, mode, srv.Addr())

	<-ctx.Done()
	log.Printf("[CLI] Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Stop(shutdownCtx)

	return nil
}

// modeForTarget maps the comparison target onto the watch mode that
// fixes which repository events matter.
func modeForTarget(target string) watch.Mode {
	switch target {
	case diff.TargetWorking, diff.TargetDot:
		return watch.ModeWorking
	case diff.TargetStaged:
		return watch.ModeStaging
	default:
		return watch.ModeCommit
	}
}
