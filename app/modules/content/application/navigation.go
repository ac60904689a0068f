package contentservice

import (
	"context"
	"net/url"
	"sort"
	"strings"

	contentdb "github.com/Black-And-White-Club/club-cms/app/modules/content/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NavigationArena indexes every navigation item by id and keeps parent/child links as
// explicit edge lists.
type NavigationArena struct {
	items    map[uuid.UUID]*contentdb.NavigationItem
	children map[uuid.UUID][]uuid.UUID
	parents  map[uuid.UUID][]uuid.UUID
}

// NavigationNode is one node of the materialised navigation tree.
type NavigationNode struct {
	Item     *contentdb.NavigationItem `json:"item"`
	Children []*NavigationNode         `json:"children,omitempty"`
}

// NewNavigationArena builds an arena from items and edges. Edges naming unknown items are dropped.
func NewNavigationArena(items []*contentdb.NavigationItem, edges []contentdb.NavigationEdge) *NavigationArena {
	a := &NavigationArena{
		items:    make(map[uuid.UUID]*contentdb.NavigationItem, len(items)),
		children: make(map[uuid.UUID][]uuid.UUID),
		parents:  make(map[uuid.UUID][]uuid.UUID),
	}
	for _, item := range items {
		a.items[item.ID] = item
	}
	for _, e := range edges {
		if _, ok := a.items[e.ParentID]; !ok {
			continue
		}
		if _, ok := a.items[e.ChildID]; !ok {
			continue
		}
		a.children[e.ParentID] = append(a.children[e.ParentID], e.ChildID)
		a.parents[e.ChildID] = append(a.parents[e.ChildID], e.ParentID)
	}
	return a
}

func loadNavigationArena(ctx context.Context, db bun.IDB, repo contentdb.Repository) (*NavigationArena, error) {
	items, err := repo.ListNavigationItems(ctx, db)
	if err != nil {
		return nil, err
	}
	edges, err := repo.ListNavigationEdges(ctx, db)
	if err != nil {
		return nil, err
	}
	return NewNavigationArena(items, edges), nil
}

// Item returns the item with id, if present.
func (a *NavigationArena) Item(id uuid.UUID) (*contentdb.NavigationItem, bool) {
	item, ok := a.items[id]
	return item, ok
}

// ChildCount returns the number of direct children of id.
func (a *NavigationArena) ChildCount(id uuid.UUID) int { return len(a.children[id]) }

// ReachableFrom reports whether target can be reached from start by following child links.
func (a *NavigationArena) ReachableFrom(start, target uuid.UUID) bool {
	seen := map[uuid.UUID]bool{}
	stack := []uuid.UUID{start}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == target {
			return true
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		stack = append(stack, a.children[id]...)
	}
	return false
}

// WouldCycle reports whether giving parent the listed children makes parent its own descendant.
func (a *NavigationArena) WouldCycle(parent uuid.UUID, childIDs []uuid.UUID) bool {
	for _, child := range childIDs {
		if child == parent || a.ReachableFrom(child, parent) {
			return true
		}
	}
	return false
}

// Tree returns the forest rooted at items without parents, children sorted by label.
func (a *NavigationArena) Tree() []*NavigationNode {
	var roots []uuid.UUID
	for id := range a.items {
		if len(a.parents[id]) == 0 {
			roots = append(roots, id)
		}
	}
	return a.nodes(roots, map[uuid.UUID]bool{})
}

func (a *NavigationArena) nodes(ids []uuid.UUID, path map[uuid.UUID]bool) []*NavigationNode {
	out := make([]*NavigationNode, 0, len(ids))
	for _, id := range ids {
		if path[id] {
			continue
		}
		path[id] = true
		out = append(out, &NavigationNode{Item: a.items[id], Children: a.nodes(a.children[id], path)})
		delete(path, id)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Item.Label < out[j].Item.Label })
	return out
}

// validateNavigationItem checks one item with the Render it will be rendered with.
// render may be nil when the item has no nav bar render.
func validateNavigationItem(item *contentdb.NavigationItem, render *contentdb.Render, childCount int) error {
	invalid := func(field, reason string) error {
		return &NavigationItemInvalid{ItemID: item.ID, Label: item.Label, FieldKey: field, Reason: reason}
	}

	if strings.TrimSpace(item.Label) == "" {
		return invalid("label", "label is required")
	}
	if !validRoute(item.Route) {
		return invalid("route", "route must be empty, start with \"/\" or be an http(s) URL")
	}
	if render == nil {
		return nil
	}
	if render.Type != contentdb.RenderNavBar {
		return invalid("nav_bar_render_id", "render "+render.Name+" is not a navbar render")
	}
	if render.IsButton {
		if item.Route == "" {
			return invalid("route", "a button render requires a route")
		}
		if childCount > 0 {
			return invalid("children", "a button render cannot have child items")
		}
	}
	if !render.Visible && childCount > 0 {
		return invalid("nav_bar_render_id", "an invisible render cannot hold child items")
	}
	return nil
}

func validRoute(route string) bool {
	if route == "" || strings.HasPrefix(route, "/") {
		return true
	}
	u, err := url.Parse(route)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
