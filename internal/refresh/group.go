package refresh

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Member is the untyped view of a Coordinator used for composition.
type Member interface {
	Name() string
	Start(ctx context.Context) error
	Stop()
	Refetch()
	Loading() bool
	Err() error
	Wait(ctx context.Context) error
}

var (
	_ Member = (*Coordinator[struct{}, int])(nil)
	_ Member = (*Group)(nil)
)

// Group combines coordinators behind one loading/error view. Member order
// is the error precedence order.
type Group struct {
	name    string
	members []Member
}

func NewGroup(name string, members ...Member) *Group {
	return &Group{name: name, members: members}
}

func (g *Group) Name() string { return g.name }

// Start starts every member; on failure the ones already started are
// stopped again.
func (g *Group) Start(ctx context.Context) error {
	for i, m := range g.members {
		if err := m.Start(ctx); err != nil {
			for _, started := range g.members[:i] {
				started.Stop()
			}
			return err
		}
	}
	return nil
}

func (g *Group) Stop() {
	for _, m := range g.members {
		m.Stop()
	}
}

// Loading reports whether any member is loading.
func (g *Group) Loading() bool {
	for _, m := range g.members {
		if m.Loading() {
			return true
		}
	}
	return false
}

// Err returns the first member error in member order.
func (g *Group) Err() error {
	for _, m := range g.members {
		if err := m.Err(); err != nil {
			return err
		}
	}
	return nil
}

// Refetch fans out to every member.
func (g *Group) Refetch() {
	for _, m := range g.members {
		m.Refetch()
	}
}

// Wait blocks until every member settles or ctx ends.
func (g *Group) Wait(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)
	for _, m := range g.members {
		eg.Go(func() error {
			return m.Wait(ctx)
		})
	}
	return eg.Wait()
}
