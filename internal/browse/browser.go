// Package browse implements the selection state the version browser UI shell
// binds to: the current task tree, the take list with its selected entry and
// the cached version window of the selected (task, take) pair. All state
// transitions are synchronous; the version cache is replaced wholesale on
// every rebuild and never patched in place.
package browse

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/studiokit/vers/internal/app/takelist"
	"github.com/studiokit/vers/internal/app/versionlist"
	"github.com/studiokit/vers/internal/log"
	"github.com/studiokit/vers/internal/model"
	"github.com/studiokit/vers/internal/storage"
	"github.com/studiokit/vers/internal/tree"
)

// BrowserConfig is the configuration for the browser.
type BrowserConfig struct {
	Repository    storage.Repository
	TreeBuilder   *tree.Builder
	VersionLister *versionlist.Service
	TakeLister    *takelist.Service
	// PublishedOnly drops unpublished versions from every listing rebuild.
	PublishedOnly bool
	// Limit caps the cached version window, newest first.
	Limit  int
	Logger log.Logger
}

func (c *BrowserConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.TreeBuilder == nil {
		return fmt.Errorf("tree builder is required")
	}
	if c.VersionLister == nil {
		return fmt.Errorf("version lister is required")
	}
	if c.TakeLister == nil {
		return fmt.Errorf("take lister is required")
	}
	if c.Limit <= 0 {
		c.Limit = 25
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "browse.Browser"})
	return nil
}

// Selection is the externally visible selection state of a browser.
type Selection struct {
	TaskID   string
	TakeName string
	// VersionID is empty when no version row is selected.
	VersionID string
}

// Browser is the version browser selection state machine. It is meant for
// single-goroutine, event-handler style use: every operation completes its
// rebuilds before returning.
type Browser struct {
	repo          storage.Repository
	treeBuilder   *tree.Builder
	versionLister *versionlist.Service
	takeLister    *takelist.Service
	publishedOnly bool
	limit         int
	logger        log.Logger

	tree         *tree.Tree
	selectedTask *tree.Node
	takes        []string
	selectedTake int
	versions     []model.Version
	selectedRow  int
	statusCode   string
}

// NewBrowser creates a new browser with an empty projection. Call Reload
// before selecting anything.
func NewBrowser(cfg BrowserConfig) (*Browser, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Browser{
		repo:          cfg.Repository,
		treeBuilder:   cfg.TreeBuilder,
		versionLister: cfg.VersionLister,
		takeLister:    cfg.TakeLister,
		publishedOnly: cfg.PublishedOnly,
		limit:         cfg.Limit,
		logger:        cfg.Logger,
		selectedTake:  -1,
		selectedRow:   -1,
	}, nil
}

// Reload rebuilds the task tree projection and clears every selection.
func (b *Browser) Reload(ctx context.Context, opts tree.BuildOptions) error {
	t, err := b.treeBuilder.Build(ctx, opts)
	if err != nil {
		return fmt.Errorf("could not build task tree: %w", err)
	}

	b.tree = t
	b.selectedTask = nil
	b.takes = nil
	b.selectedTake = -1
	b.versions = nil
	b.selectedRow = -1

	return nil
}

// Tree returns the current projection, nil before the first Reload.
func (b *Browser) Tree() *tree.Tree { return b.tree }

// Selection returns the current selection state.
func (b *Browser) Selection() Selection {
	s := Selection{}
	if b.selectedTask != nil {
		s.TaskID = b.selectedTask.ID
	}
	if b.selectedTake >= 0 {
		s.TakeName = b.takes[b.selectedTake]
	}
	if b.selectedRow >= 0 {
		s.VersionID = b.versions[b.selectedRow].ID
	}
	return s
}

// Takes returns the current take list.
func (b *Browser) Takes() []string { return b.takes }

// Versions returns the cached version window, ascending by version number.
func (b *Browser) Versions() []model.Version { return b.versions }

// SelectedVersion returns the version of the selected row, or nil.
func (b *Browser) SelectedVersion() *model.Version {
	if b.selectedRow < 0 {
		return nil
	}
	v := b.versions[b.selectedRow]
	return &v
}

// StatusCode returns the workflow status propagated from the last listing
// rebuild (the status of the newest listed version). Empty until a non-empty
// rebuild happened.
func (b *Browser) StatusCode() string { return b.statusCode }

// SelectTask selects a tree node by entity ID. Selecting a project root (or
// an unknown ID) clears the take list and version cache. Selecting a task
// rebuilds the take list, selects its first entry and rebuilds the version
// cache for it.
func (b *Browser) SelectTask(ctx context.Context, id string) error {
	if b.tree == nil {
		return fmt.Errorf("task tree is not built")
	}

	b.takes = nil
	b.selectedTake = -1
	b.versions = nil
	b.selectedRow = -1

	node := b.tree.FindTask(id)
	if node == nil {
		b.selectedTask = nil
		return nil
	}
	b.selectedTask = node

	takes, err := b.takeLister.Run(ctx, node.ID)
	if err != nil {
		return fmt.Errorf("could not list takes: %w", err)
	}
	b.takes = takes
	b.selectedTake = 0

	return b.refreshVersions(ctx)
}

// SelectTake selects the take whose label exactly matches name. When the
// name is not in the list the previous selection is left untouched and false
// is returned. On a successful selection the version cache is rebuilt.
func (b *Browser) SelectTake(ctx context.Context, name string) (bool, error) {
	idx := -1
	for i, t := range b.takes {
		if t == name {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false, nil
	}

	b.selectedTake = idx
	if err := b.refreshVersions(ctx); err != nil {
		return false, err
	}

	return true, nil
}

// AddTake normalizes raw input into a canonical take name and inserts it
// into the take list. Input normalizing to empty is rejected silently. A
// name already present is not inserted twice but still gets selected. The
// list stays sorted. The version cache is rebuilt for the selected take.
func (b *Browser) AddTake(ctx context.Context, raw string) (name string, inserted bool, err error) {
	name = model.NormalizeTakeName(raw)
	if name == "" {
		return "", false, nil
	}

	for _, t := range b.takes {
		if t == name {
			_, err := b.SelectTake(ctx, name)
			return name, false, err
		}
	}

	b.takes = append(b.takes, name)
	sort.Strings(b.takes)

	_, err = b.SelectTake(ctx, name)
	if err != nil {
		return "", false, err
	}

	return name, true, nil
}

// SelectRow selects a version row by index in the cached window. Out of
// range indexes clear the row selection.
func (b *Browser) SelectRow(i int) {
	if i < 0 || i >= len(b.versions) {
		b.selectedRow = -1
		return
	}
	b.selectedRow = i
}

// Refresh re-runs the listing for the current (task, take) selection,
// replacing the cached window. Row selection is cleared.
func (b *Browser) Refresh(ctx context.Context) error {
	return b.refreshVersions(ctx)
}

// Restore restores the browser selection from an externally supplied version
// reference (e.g. the last version the host application had open). Stale
// references degrade to silent no-ops: a nil reference, an inactive owning
// project or a task missing from the projection leave the selection as is. A
// reference that fell outside the capped/filtered window selects its task
// and take but leaves no version row selected.
func (b *Browser) Restore(ctx context.Context, ref *model.Version) (Selection, error) {
	if ref == nil {
		return b.Selection(), nil
	}

	task, err := b.repo.GetTask(ctx, ref.TaskID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return b.Selection(), nil
		}
		return Selection{}, fmt.Errorf("could not get task: %w", err)
	}

	project, err := b.repo.GetProject(ctx, task.ProjectID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return b.Selection(), nil
		}
		return Selection{}, fmt.Errorf("could not get project: %w", err)
	}
	if !project.Active {
		b.logger.Debugf("Reference version %s belongs to inactive project %s, not restoring", ref.ID, project.ID)
		return b.Selection(), nil
	}

	if b.tree == nil || b.tree.FindTask(ref.TaskID) == nil {
		b.logger.Debugf("Task %s not in the current projection, not restoring", ref.TaskID)
		return b.Selection(), nil
	}

	if err := b.SelectTask(ctx, ref.TaskID); err != nil {
		return Selection{}, err
	}

	// When the take is missing from the rebuilt list the prior (default)
	// take selection is kept; the identity scan below then simply finds
	// nothing.
	if _, err := b.SelectTake(ctx, ref.TakeName); err != nil {
		return Selection{}, err
	}

	b.selectedRow = -1
	for i := range b.versions {
		if b.versions[i].ID == ref.ID {
			b.selectedRow = i
			break
		}
	}

	return b.Selection(), nil
}

func (b *Browser) refreshVersions(ctx context.Context) error {
	b.versions = nil
	b.selectedRow = -1

	if b.selectedTask == nil || b.selectedTake < 0 {
		return nil
	}

	versions, err := b.versionLister.Run(ctx, versionlist.Request{
		TaskID:        b.selectedTask.ID,
		TakeName:      b.takes[b.selectedTake],
		PublishedOnly: b.publishedOnly,
		Limit:         b.limit,
	})
	if err != nil {
		return fmt.Errorf("could not list versions: %w", err)
	}

	b.versions = versions

	// Propagate the status of the newest listed version; an empty window
	// leaves the previous status untouched.
	if last := versionlist.Last(versions); last != nil {
		b.statusCode = last.StatusCode
	}

	return nil
}
