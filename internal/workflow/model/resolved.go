package model

import (
	"time"

	"github.com/google/uuid"
)

// StepKind classifies an entry in the resolved timeline.
type StepKind string

const (
	StepKindMain     StepKind = "main"     // Always-rendered linear step
	StepKindDecision StepKind = "decision" // The decision node itself
	StepKindBranch   StepKind = "branch"   // Reached via a matched transition
	StepKindAwaiting StepKind = "awaiting" // Synthetic "awaiting lab result" placeholder
)

// TemplateRef is the pass-through view of a document template attached to a step.
type TemplateRef struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Version string    `json:"version"`
}

// ResolvedStep is one rendered entry of a sample's workflow timeline.
type ResolvedStep struct {
	Kind        StepKind      `json:"kind"`
	Node        *WorkflowNode `json:"node,omitempty"` // nil for the awaiting placeholder
	BranchLabel string        `json:"branchLabel,omitempty"`
	Complete    bool          `json:"complete"`
	Current     bool          `json:"current"`
	CompletedAt *time.Time    `json:"completedAt,omitempty"`
	NodeData    JSONMap       `json:"nodeData,omitempty"`
	Templates   []TemplateRef `json:"templates,omitempty"`
}

// ResolvedWorkflow is the Position Resolver's output for one sample.
type ResolvedWorkflow struct {
	// Configured is false when no active nodes exist; the view is empty
	// rather than an error.
	Configured bool `json:"configured"`

	Steps []ResolvedStep `json:"steps"`

	// CurrentIndex is the index into Steps of the currently active main-path
	// step, or -1 when the view is empty.
	CurrentIndex int `json:"currentIndex"`

	// AwaitingLabResult is set when a report exists but no result has been
	// recorded yet and the decision node has outgoing transitions.
	AwaitingLabResult bool `json:"awaitingLabResult"`

	// UnmatchedLabResult flags a recorded lab result that no transition
	// condition covers. Rendering stays silent; admins see the gap here.
	UnmatchedLabResult bool `json:"unmatchedLabResult"`
}
