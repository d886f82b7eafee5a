// Package tree builds a read-only projection of the Project -> Task work
// breakdown hierarchy. The projection is rebuilt on demand and never mutates
// the domain entities: node lookups go through a side map owned by the tree,
// keyed by entity ID.
package tree

import (
	"context"
	"fmt"
	"sort"

	"github.com/studiokit/vers/internal/log"
	"github.com/studiokit/vers/internal/model"
	"github.com/studiokit/vers/internal/storage"
)

// Node is one entry of the task tree projection.
type Node struct {
	Kind model.EntityKind
	// ID is the project or task ID depending on Kind.
	ID   string
	Name string
	// DependencyNames are the names of the tasks this node's task depends on.
	DependencyNames []string
	Parent          *Node
	Children        []*Node

	// Task is set for task nodes, Project for project roots.
	Task    *model.Task
	Project *model.Project
}

// Tree is a task hierarchy projection.
type Tree struct {
	Roots []*Node

	byID map[string]*Node
}

// FindTask returns the node of the task with the given ID, or nil when the
// branch is not part of the projection.
func (t *Tree) FindTask(id string) *Node {
	n := t.byID[id]
	if n == nil || n.Kind != model.EntityKindTask {
		return nil
	}
	return n
}

// FindProject returns the root node of the project with the given ID, or nil.
func (t *Tree) FindProject(id string) *Node {
	n := t.byID[id]
	if n == nil || n.Kind != model.EntityKindProject {
		return nil
	}
	return n
}

// Walk visits every node depth first, parents before children.
func (t *Tree) Walk(fn func(n *Node)) {
	var visit func(n *Node)
	visit = func(n *Node) {
		fn(n)
		for _, c := range n.Children {
			visit(c)
		}
	}
	for _, r := range t.Roots {
		visit(r)
	}
}

// BuilderConfig is the configuration for the tree builder.
type BuilderConfig struct {
	Repository storage.Repository
	Logger     log.Logger
}

func (c *BuilderConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "tree.Builder"})
	return nil
}

// Builder materializes task tree projections from the repository.
type Builder struct {
	repo   storage.Repository
	logger log.Logger
}

// NewBuilder creates a new tree builder.
func NewBuilder(cfg BuilderConfig) (*Builder, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Builder{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// BuildOptions tune which tasks enter the projection.
type BuildOptions struct {
	// CreatedBy limits the projection to tasks created by this user ID
	// (parents of matching tasks are kept so branches stay connected).
	CreatedBy string
}

// Build materializes a fresh projection: project roots first, then tasks
// wired under their parent task or project root. Dependency links are
// resolved to task names for display.
func (b *Builder) Build(ctx context.Context, opts BuildOptions) (*Tree, error) {
	projects, err := b.repo.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list projects: %w", err)
	}

	tasks, err := b.repo.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list tasks: %w", err)
	}

	taskByID := make(map[string]model.Task, len(tasks))
	for _, t := range tasks {
		taskByID[t.ID] = t
	}

	keep := tasks
	if opts.CreatedBy != "" {
		keep = filterWithAncestors(tasks, taskByID, opts.CreatedBy)
	}

	tree := &Tree{byID: make(map[string]*Node, len(projects)+len(keep))}

	for i := range projects {
		p := projects[i]
		node := &Node{
			Kind:    model.EntityKindProject,
			ID:      p.ID,
			Name:    p.Name,
			Project: &p,
		}
		tree.byID[p.ID] = node
		tree.Roots = append(tree.Roots, node)
	}

	// Tasks come name-sorted from the repository; add parents before
	// children so wiring is a single pass.
	pending := append([]model.Task(nil), keep...)
	for len(pending) > 0 {
		var next []model.Task
		progressed := false
		for _, t := range pending {
			if t.ParentID != "" {
				if _, ok := tree.byID[t.ParentID]; !ok {
					next = append(next, t)
					continue
				}
			}
			if err := b.addTask(tree, taskByID, t); err != nil {
				return nil, err
			}
			progressed = true
		}
		if !progressed {
			// Orphan branches (missing parent or project). Skip them.
			b.logger.Warningf("Skipping %d tasks with unresolved parents", len(next))
			break
		}
		pending = next
	}

	b.sortChildren(tree)

	b.logger.Debugf("Built task tree with %d roots and %d nodes", len(tree.Roots), len(tree.byID))
	return tree, nil
}

func (b *Builder) addTask(tree *Tree, taskByID map[string]model.Task, t model.Task) error {
	parent := tree.byID[t.ParentID]
	if t.ParentID == "" {
		parent = tree.byID[t.ProjectID]
	}
	if parent == nil {
		// Project missing from the repository. Leave the branch out, the
		// projection is display-only.
		b.logger.Warningf("Task %s has no reachable parent, skipping", t.ID)
		return nil
	}

	tCopy := t
	node := &Node{
		Kind:   model.EntityKindTask,
		ID:     t.ID,
		Name:   t.Name,
		Task:   &tCopy,
		Parent: parent,
	}
	for _, depID := range t.DependencyIDs {
		if dep, ok := taskByID[depID]; ok {
			node.DependencyNames = append(node.DependencyNames, dep.Name)
		}
	}

	parent.Children = append(parent.Children, node)
	tree.byID[t.ID] = node
	return nil
}

func (b *Builder) sortChildren(tree *Tree) {
	tree.Walk(func(n *Node) {
		sort.Slice(n.Children, func(i, j int) bool { return n.Children[i].Name < n.Children[j].Name })
	})
	sort.Slice(tree.Roots, func(i, j int) bool { return tree.Roots[i].Name < tree.Roots[j].Name })
}

// filterWithAncestors keeps tasks created by the given user plus every
// ancestor needed to connect them to a project root.
func filterWithAncestors(tasks []model.Task, byID map[string]model.Task, createdBy string) []model.Task {
	keep := map[string]struct{}{}
	for _, t := range tasks {
		if t.CreatedBy != createdBy {
			continue
		}
		for id := t.ID; id != ""; {
			if _, ok := keep[id]; ok {
				break
			}
			keep[id] = struct{}{}
			parent, ok := byID[id]
			if !ok {
				break
			}
			id = parent.ParentID
		}
	}

	out := make([]model.Task, 0, len(keep))
	for _, t := range tasks {
		if _, ok := keep[t.ID]; ok {
			out = append(out, t)
		}
	}
	return out
}
