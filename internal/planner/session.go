// Package planner sequences analysis, confirmation and commit of schedule
// mutations for a single caller and keeps a bounded undo history.
//
// The session holds the only mutable reference to the current graph. Every
// commit replaces that reference with a freshly built graph and pushes the
// previous one onto the undo stack, so undo is a pointer swap. Sessions are
// not safe for concurrent use; the caller serializes user actions.
package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/phaseline/internal/impact"
	"github.com/alexanderramin/phaseline/internal/schedule"
)

// DefaultUndoDepth is the number of snapshots kept when no depth is set.
const DefaultUndoDepth = 50

var (
	// ErrStaleProposal is returned when a proposal is committed after the
	// graph it was analyzed against has changed.
	ErrStaleProposal = errors.New("proposal is stale: the plan changed after it was analyzed")
	// ErrNoProposal is returned when Commit is called without a proposal.
	ErrNoProposal = errors.New("no proposal to commit")
	// ErrAckRequired is returned when a critical proposal is committed
	// without a "delete anyway" acknowledgement.
	ErrAckRequired = errors.New(`critical impact requires a "delete anyway" acknowledgement`)
)

// Ack is the acknowledgement a caller collected for a proposal.
type Ack int

const (
	AckConfirm Ack = iota
	AckDeleteAnyway
)

// Proposal is an analyzed, not yet committed mutation.
type Proposal struct {
	Mutation Mutation
	// Report is nil for mutations without impact analysis.
	Report *impact.Report
	// base is the graph the report was computed against.
	base *schedule.Graph
}

// Confirmation returns the acknowledgement the caller must collect.
func (p *Proposal) Confirmation() impact.Confirmation {
	if p.Report == nil {
		return impact.ConfirmPlain
	}
	return p.Report.Confirmation()
}

type Option func(*Session)

// WithUndoDepth bounds the undo stack. Values below 1 keep the default.
func WithUndoDepth(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.depth = n
		}
	}
}

func WithObserver(o Observer) Option {
	return func(s *Session) {
		if o != nil {
			s.observer = o
		}
	}
}

type Session struct {
	graph    *schedule.Graph
	analyzer *impact.Analyzer
	undo     []*schedule.Graph
	depth    int
	observer Observer
}

func NewSession(g *schedule.Graph, a *impact.Analyzer, opts ...Option) *Session {
	s := &Session{
		graph:    g,
		analyzer: a,
		depth:    DefaultUndoDepth,
		observer: NoopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Graph returns the current graph.
func (s *Session) Graph() *schedule.Graph { return s.graph }

// UndoLen returns how many snapshots can be undone.
func (s *Session) UndoLen() int { return len(s.undo) }

// Propose analyzes m against the current graph without changing it.
func (s *Session) Propose(ctx context.Context, m Mutation) (*Proposal, error) {
	start := time.Now()
	report, err := m.analyze(s.analyzer, s.graph)
	fields := map[string]any{"mutation": m.Describe()}
	if report != nil {
		fields["severity"] = report.Severity.String()
		fields["categories"] = len(report.Categories)
	}
	s.observe(ctx, "propose", start, err, fields)
	if err != nil {
		return nil, fmt.Errorf("propose %s: %w", m.Describe(), err)
	}
	return &Proposal{Mutation: m, Report: report, base: s.graph}, nil
}

// Commit applies a proposal. It fails with ErrStaleProposal unless the
// proposal was analyzed against this session's current graph, and with ErrAckRequired if the report is critical
// and ack is not AckDeleteAnyway. On any failure the graph is unchanged.
func (s *Session) Commit(ctx context.Context, p *Proposal, ack Ack) error {
	if p == nil || p.Mutation == nil {
		return ErrNoProposal
	}
	start := time.Now()
	err := s.commit(p, ack)
	s.observe(ctx, "commit", start, err, map[string]any{
		"mutation": p.Mutation.Describe(),
		"undo_len": len(s.undo),
	})
	return err
}

func (s *Session) commit(p *Proposal, ack Ack) error {
	if p.base != s.graph {
		return ErrStaleProposal
	}
	if p.Confirmation() == impact.ConfirmDeleteAnyway && ack != AckDeleteAnyway {
		return ErrAckRequired
	}
	next, err := p.Mutation.apply(s.graph)
	if err != nil {
		return fmt.Errorf("commit %s: %w", p.Mutation.Describe(), err)
	}
	s.replace(next)
	return nil
}

// Apply proposes and commits m in one step with a plain confirmation. It is
// meant for edits without impact analysis; a critical report still fails
// with ErrAckRequired.
func (s *Session) Apply(ctx context.Context, m Mutation) error {
	p, err := s.Propose(ctx, m)
	if err != nil {
		return err
	}
	return s.Commit(ctx, p, AckConfirm)
}

// replace installs next as the current graph. A mutation that returned the
// same graph (a boundary no-op) records nothing.
func (s *Session) replace(next *schedule.Graph) {
	if next == s.graph {
		return
	}
	s.undo = append(s.undo, s.graph)
	if len(s.undo) > s.depth {
		s.undo = append([]*schedule.Graph(nil), s.undo[len(s.undo)-s.depth:]...)
	}
	s.graph = next
}

// Undo restores the graph from before the last commit. It returns false
// and does nothing when there is nothing to undo.
func (s *Session) Undo(ctx context.Context) bool {
	start := time.Now()
	if len(s.undo) == 0 {
		return false
	}
	last := len(s.undo) - 1
	s.graph = s.undo[last]
	s.undo[last] = nil
	s.undo = s.undo[:last]
	s.observe(ctx, "undo", start, nil, map[string]any{"undo_len": len(s.undo)})
	return true
}
