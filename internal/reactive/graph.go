// Package reactive is a small declarative update graph: callbacks declare the
// component properties they read and write, and a dispatch recomputes every
// callback whose inputs changed, producers before consumers.
package reactive

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrInvalidCallback = errors.New("reactive: invalid callback")
	ErrOutputConflict  = errors.New("reactive: output already has a producer")
	ErrCycle           = errors.New("reactive: callback graph has a cycle")
)

// Prop addresses one property of one component, e.g. {"x-axis", "options"}.
type Prop struct {
	ID       string
	Property string
}

func (p Prop) String() string { return p.ID + "." + p.Property }

// Func computes a callback's outputs from its inputs, positionally.
type Func func(ctx context.Context, inputs []any) ([]any, error)

type Callback struct {
	Name    string
	Inputs  []Prop
	Outputs []Prop
	Func    Func
}

// Graph holds registered callbacks in dependency order.
// Register is not safe to call concurrently with Dispatch; wire the graph before serving.
type Graph struct {
	callbacks []Callback
	producers map[Prop]int
	order     []int
}

func New() *Graph {
	return &Graph{producers: make(map[Prop]int)}
}

// Register adds a callback. Every output may have only one producer and the
// resulting graph must stay acyclic.
func (g *Graph) Register(cb Callback) error {
	if cb.Func == nil || len(cb.Inputs) == 0 || len(cb.Outputs) == 0 {
		return fmt.Errorf("%w: %q needs inputs, outputs and a func", ErrInvalidCallback, cb.Name)
	}
	seen := make(map[Prop]bool, len(cb.Outputs))
	for _, p := range cb.Outputs {
		if seen[p] {
			return fmt.Errorf("%w: %q lists output %s twice", ErrInvalidCallback, cb.Name, p)
		}
		seen[p] = true
		if owner, ok := g.producers[p]; ok {
			return fmt.Errorf("%w: %s is written by %q", ErrOutputConflict, p, g.callbacks[owner].Name)
		}
	}

	candidate := append(append([]Callback(nil), g.callbacks...), cb)
	order, err := topoSort(candidate)
	if err != nil {
		return err
	}

	idx := len(g.callbacks)
	g.callbacks = candidate
	g.order = order
	for _, p := range cb.Outputs {
		g.producers[p] = idx
	}
	return nil
}

// Callbacks returns the registered callbacks in registration order.
func (g *Graph) Callbacks() []Callback {
	return append([]Callback(nil), g.callbacks...)
}

// Request carries the properties that changed and the current value of every
// property the client knows about.
type Request struct {
	Changed []Prop
	State   map[Prop]any
}

// Response holds every property written during a dispatch, in write order.
type Response struct {
	Order  []Prop
	Values map[Prop]any
}

// Dispatch fires each callback with at least one changed input, at most once,
// treating its outputs as changed for the callbacks downstream.
func (g *Graph) Dispatch(ctx context.Context, req Request) (Response, error) {
	state := make(map[Prop]any, len(req.State))
	for p, v := range req.State {
		state[p] = v
	}
	changed := make(map[Prop]bool, len(req.Changed))
	for _, p := range req.Changed {
		changed[p] = true
	}

	resp := Response{Values: make(map[Prop]any)}
	for _, i := range g.order {
		cb := g.callbacks[i]
		if !triggered(cb, changed) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return Response{}, err
		}

		args := make([]any, len(cb.Inputs))
		for j, p := range cb.Inputs {
			args[j] = state[p]
		}
		out, err := cb.Func(ctx, args)
		if err != nil {
			return Response{}, fmt.Errorf("reactive: callback %q: %w", cb.Name, err)
		}
		if len(out) != len(cb.Outputs) {
			return Response{}, fmt.Errorf("reactive: callback %q returned %d values for %d outputs", cb.Name, len(out), len(cb.Outputs))
		}
		for j, p := range cb.Outputs {
			state[p] = out[j]
			changed[p] = true
			if _, dup := resp.Values[p]; !dup {
				resp.Order = append(resp.Order, p)
			}
			resp.Values[p] = out[j]
		}
	}
	return resp, nil
}

func triggered(cb Callback, changed map[Prop]bool) bool {
	for _, p := range cb.Inputs {
		if changed[p] {
			return true
		}
	}
	return false
}

// topoSort orders callbacks so producers come before consumers, breaking ties by
// registration order.
func topoSort(cbs []Callback) ([]int, error) {
	producer := make(map[Prop]int)
	for i, cb := range cbs {
		for _, p := range cb.Outputs {
			producer[p] = i
		}
	}
	indeg := make([]int, len(cbs))
	next := make([][]int, len(cbs))
	for i, cb := range cbs {
		deps := make(map[int]bool)
		for _, p := range cb.Inputs {
			if k, ok := producer[p]; ok && !deps[k] {
				if k == i {
					return nil, fmt.Errorf("%w: %q reads its own output %s", ErrCycle, cb.Name, p)
				}
				deps[k] = true
				next[k] = append(next[k], i)
				indeg[i]++
			}
		}
	}

	order := make([]int, 0, len(cbs))
	done := make([]bool, len(cbs))
	for len(order) < len(cbs) {
		pick := -1
		for i := range cbs {
			if !done[i] && indeg[i] == 0 {
				pick = i
				break
			}
		}
		if pick < 0 {
			return nil, ErrCycle
		}
		done[pick] = true
		order = append(order, pick)
		for _, n := range next[pick] {
			indeg[n]--
		}
	}
	return order, nil
}
