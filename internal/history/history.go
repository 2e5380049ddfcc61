// Package history keeps the undo and redo stacks of canvas snapshots.
//
// The convention is snapshot-before-mutate: callers Checkpoint the current
// state immediately before changing it, so the top of the undo stack is always
// the state an Undo should return to.
package history

import (
	"github.com/example/shineypad/internal/logx"
	"github.com/example/shineypad/internal/surface"
)

// Target is the thing whose state is recorded.
type Target interface {
	Snapshot() surface.Snapshot
	Restore(surface.Snapshot) error
}

// Manager holds the two stacks. It is not safe for concurrent use.
type Manager struct {
	target Target
	undo   []surface.Snapshot
	redo   []surface.Snapshot
	limit  int
}

// Option configures a Manager.
type Option func(*Manager)

// WithLimit caps the undo stack; the oldest entry is evicted first. Zero
// leaves it unbounded.
func WithLimit(n int) Option {
	return func(m *Manager) {
		if n >= 0 {
			m.limit = n
		}
	}
}

// New returns an empty manager recording target.
func New(target Target, opts ...Option) *Manager {
	m := &Manager{target: target}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Checkpoint records the current state and invalidates the redo stack.
func (m *Manager) Checkpoint() {
	snap := m.target.Snapshot()
	m.undo = append(m.undo, snap)
	if m.limit > 0 && len(m.undo) > m.limit {
		evicted := len(m.undo) - m.limit
		clear(m.undo[:evicted])
		m.undo = m.undo[evicted:]
	}
	if len(m.redo) > 0 {
		clear(m.redo)
		m.redo = m.redo[:0]
	}
	logx.L().Debug("history checkpoint", "snapshot", snap.ID(), "undo", len(m.undo))
}

// Undo restores the most recent checkpoint, saving the current state for
// Redo. It reports false when there is nothing to undo.
func (m *Manager) Undo() bool {
	if len(m.undo) == 0 {
		return false
	}
	prev := m.undo[len(m.undo)-1]
	cur := m.target.Snapshot()
	if err := m.target.Restore(prev); err != nil {
		logx.L().Warn("history undo", "snapshot", prev.ID(), "err", err)
		return false
	}
	m.undo[len(m.undo)-1] = surface.Snapshot{}
	m.undo = m.undo[:len(m.undo)-1]
	m.redo = append(m.redo, cur)
	logx.L().Debug("history undo", "restored", prev.ID(), "undo", len(m.undo), "redo", len(m.redo))
	return true
}

// Redo reapplies the most recently undone state.
func (m *Manager) Redo() bool {
	if len(m.redo) == 0 {
		return false
	}
	next := m.redo[len(m.redo)-1]
	cur := m.target.Snapshot()
	if err := m.target.Restore(next); err != nil {
		logx.L().Warn("history redo", "snapshot", next.ID(), "err", err)
		return false
	}
	m.redo[len(m.redo)-1] = surface.Snapshot{}
	m.redo = m.redo[:len(m.redo)-1]
	m.undo = append(m.undo, cur)
	logx.L().Debug("history redo", "restored", next.ID(), "undo", len(m.undo), "redo", len(m.redo))
	return true
}

// Drop discards the newest checkpoint without touching the target. It is
// used when a gesture that checkpointed its base state is abandoned.
func (m *Manager) Drop() bool {
	if len(m.undo) == 0 {
		return false
	}
	id := m.undo[len(m.undo)-1].ID()
	m.undo[len(m.undo)-1] = surface.Snapshot{}
	m.undo = m.undo[:len(m.undo)-1]
	logx.L().Debug("history drop", "snapshot", id, "undo", len(m.undo))
	return true
}

// Reset empties both stacks.
func (m *Manager) Reset() {
	m.undo = nil
	m.redo = nil
}

// CanUndo reports whether Undo would restore anything.
func (m *Manager) CanUndo() bool { return len(m.undo) > 0 }

// CanRedo reports whether Redo would restore anything.
func (m *Manager) CanRedo() bool { return len(m.redo) > 0 }

// UndoDepth is the number of snapshots Undo can step back through.
func (m *Manager) UndoDepth() int { return len(m.undo) }

// RedoDepth is the number of snapshots Redo can step forward through.
func (m *Manager) RedoDepth() int { return len(m.redo) }
