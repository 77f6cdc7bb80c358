package watch

import (
	"context"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	apperrors "github.com/diffdeck/diffdeck/internal/errors"
	"github.com/diffdeck/diffdeck/internal/git"
)

// DefaultDebounce is the quiet window collapsing a burst of filesystem
// events into one invalidation.
const DefaultDebounce = 300 * time.Millisecond

// Mode selects what repository state the UI is reviewing, which fixes the
// watch-root set, the git-internal filename allowlist, and the change-type
// classification carried by reload notifications.
type Mode string

const (
	// ModeCommit reviews committed ranges; only HEAD movements matter.
	ModeCommit Mode = "commit"

	// ModeStaging reviews the index; HEAD and index changes matter.
	ModeStaging Mode = "staging"

	// ModeWorking reviews the working tree; file edits plus HEAD and
	// index changes matter.
	ModeWorking Mode = "working"
)

// ChangeType is the static classification reload notifications carry for
// this mode. It is derived from the mode alone, not from which file
// changed.
func (m Mode) ChangeType() string {
	switch m {
	case ModeStaging:
		return "staging"
	case ModeWorking:
		return "file"
	default:
		return "commit"
	}
}

// gitFileRelevant reports whether a git-metadata filename matters in this
// mode. Everything else under the git dir (objects, logs, packed refs) is
// noise for cache freshness.
func (m Mode) gitFileRelevant(name string) bool {
	switch m {
	case ModeCommit:
		return name == "HEAD"
	default:
		return name == "HEAD" || name == "index"
	}
}

// watchesWorkingTree reports whether the working tree itself is a watch
// root in this mode.
func (m Mode) watchesWorkingTree() bool {
	return m == ModeWorking
}

// Notifier receives the single downstream signal per quiescent period.
type Notifier interface {
	NotifyReload(changeType string)
}

// Config configures a Watcher.
type Config struct {
	// Root is the working tree root.
	Root string

	// Mode fixes watch roots, git-file allowlist and change type.
	Mode Mode

	// Debounce is the quiet window. Zero means DefaultDebounce.
	Debounce time.Duration

	// IgnoreGlobs are patterns for events to drop ("**", "*", leading "!").
	IgnoreGlobs []string

	// Git resolves the metadata directory and answers check-ignore.
	Git git.Executor

	// OnInvalidate is called once per quiescent period, before the reload
	// notification. It should clear downstream caches.
	OnInvalidate func()

	// Notifier receives the reload signal after invalidation.
	Notifier Notifier
}

// Watcher subscribes to filesystem notifications, filters noise, and
// debounces bursts into exactly one invalidation + notification.
//
// State machine: Idle -> Watching -> Idle via Start/Stop. Start while
// watching tears down the existing subscriptions first (idempotent
// restart). Stop is safe at any point, including mid-debounce, and is
// idempotent.
type Watcher struct {
	config Config
	ignore *IgnoreSet

	mu       sync.Mutex
	fsw      *fsnotify.Watcher
	gitDir   string
	timer    *time.Timer // single-slot pending debounce; arming replaces
	watching bool
}

// New creates a Watcher (not started).
func New(config Config) *Watcher {
	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounce
	}
	return &Watcher{
		config: config,
		ignore: CompileIgnoreSet(config.IgnoreGlobs),
	}
}

// Start resolves the git metadata directory, subscribes the watch roots
// for the configured mode, and begins filtering events. A failure to
// subscribe one root is logged and the remaining roots still get watched;
// only a failure to create the notification channel itself is fatal.
func (w *Watcher) Start(ctx context.Context) error {
	// Idempotent restart: tear down any existing subscriptions first.
	w.Stop()

	if ctx == nil {
		ctx = context.Background()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return apperrors.Wrap(apperrors.CodeWatchSubscribeFailed, "failed to create filesystem watcher", err)
	}

	gitDir := git.ResolveDir(ctx, w.config.Git, w.config.Root)

	if w.config.Mode.watchesWorkingTree() {
		w.addWorkingTree(fsw, gitDir)
	}
	if err := fsw.Add(gitDir); err != nil {
		log.Printf("[Watcher] Warning: could not watch git dir %s: %v", gitDir, err)
	}

	w.mu.Lock()
	w.fsw = fsw
	w.gitDir = gitDir
	w.watching = true
	w.mu.Unlock()

	log.Printf("[Watcher] Watching %s (mode=%s, git dir=%s)", w.config.Root, w.config.Mode, gitDir)

	go w.loop(ctx, fsw)
	return nil
}

// Stop cancels any pending debounce timer and unsubscribes all watch
// roots. Unsubscribe failures are logged, not propagated. Idempotent.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.watching {
		w.mu.Unlock()
		return
	}
	w.watching = false
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	fsw := w.fsw
	w.fsw = nil
	w.mu.Unlock()

	if fsw != nil {
		if err := fsw.Close(); err != nil {
			log.Printf("[Watcher] Warning: error closing watcher: %v", err)
		}
	}
}

// addWorkingTree registers the working tree's directories, skipping the
// git dir and ignored subtrees. fsnotify watches are per-directory, so
// the tree is walked once here and created directories are added
// dynamically from the event loop.
func (w *Watcher) addWorkingTree(fsw *fsnotify.Watcher, gitDir string) {
	root := w.config.Root
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if filepath.Clean(path) == filepath.Clean(gitDir) || d.Name() == ".git" {
			return filepath.SkipDir
		}

		if rel, relErr := filepath.Rel(root, path); relErr == nil && rel != "." {
			if w.ignore.Ignored(filepath.ToSlash(rel)) {
				return filepath.SkipDir
			}
		}

		if addErr := fsw.Add(path); addErr != nil {
			// Partial degradation: this subtree goes unwatched, the rest
			// still works.
			log.Printf("[Watcher] Warning: could not watch %s: %v", path, addErr)
		}
		return nil
	})
	if walkErr != nil {
		log.Printf("[Watcher] Warning: working tree walk failed: %v", walkErr)
	}
}

// loop consumes raw filesystem events until the watcher closes.
func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher) {
	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, fsw, event)

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			log.Printf("[Watcher] Error: %v", err)
		}
	}
}

// handleEvent filters one raw event and arms the debounce timer when the
// event survives all filters.
func (w *Watcher) handleEvent(ctx context.Context, fsw *fsnotify.Watcher, event fsnotify.Event) {
	// New directories in the working tree need their own watch; fsnotify
	// does not recurse. Directories under the git dir are excluded the
	// same way addWorkingTree excludes them.
	if event.Has(fsnotify.Create) && w.config.Mode.watchesWorkingTree() && !w.underGitDir(event.Name) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if rel, relErr := filepath.Rel(w.config.Root, event.Name); relErr == nil &&
				!w.ignore.Ignored(filepath.ToSlash(rel)) {
				if addErr := fsw.Add(event.Name); addErr != nil {
					log.Printf("[Watcher] Warning: could not watch new directory %s: %v", event.Name, addErr)
				}
			}
		}
	}

	if !w.relevant(ctx, event.Name) {
		return
	}

	w.armDebounce()
}

// underGitDir reports whether a path is the git metadata root or inside
// it.
func (w *Watcher) underGitDir(path string) bool {
	w.mu.Lock()
	gitDir := w.gitDir
	w.mu.Unlock()

	path = filepath.Clean(path)
	return path == gitDir || strings.HasPrefix(path, gitDir+string(os.PathSeparator))
}

// relevant applies the filter chain: ignore globs, gitignore, and the
// git-internal filename allowlist.
func (w *Watcher) relevant(ctx context.Context, path string) bool {
	path = filepath.Clean(path)

	// Events under the git metadata root only matter for the small set of
	// files relevant to the mode. Git updates refs via lock+rename, so a
	// trailing .lock is normalized away first.
	if w.underGitDir(path) {
		name := strings.TrimSuffix(filepath.Base(path), ".lock")
		return w.config.Mode.gitFileRelevant(name)
	}

	rel, err := filepath.Rel(w.config.Root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	rel = filepath.ToSlash(rel)

	if w.ignore.Ignored(rel) {
		return false
	}

	// Fail-open: check-ignore errors both for genuine failures and for
	// "nothing ignored", so an error means the event stays relevant.
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if git.CheckIgnore(checkCtx, w.config.Git, rel) {
		return false
	}

	return true
}

// armDebounce arms the single-slot debounce timer. A pending timer is
// cancelled and replaced, never queued, so a burst of relevant events
// yields one invalidation per quiescent period.
func (w *Watcher) armDebounce() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.watching {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.config.Debounce, w.fire)
}

// fire runs the downstream signal: invalidate caches, then notify
// sessions, tagged with the mode's static change type.
func (w *Watcher) fire() {
	w.mu.Lock()
	if !w.watching {
		w.mu.Unlock()
		return
	}
	w.timer = nil
	w.mu.Unlock()

	log.Printf("[Watcher] Change detected, invalidating (%s)", w.config.Mode.ChangeType())

	if w.config.OnInvalidate != nil {
		w.config.OnInvalidate()
	}
	if w.config.Notifier != nil {
		w.config.Notifier.NotifyReload(w.config.Mode.ChangeType())
	}
}
