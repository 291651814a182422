package service

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/openfsis/fsis/internal/workflow/model"
)

// Resolver computes, for one sample, the ordered timeline of workflow steps:
// which main-path steps are complete, which is active, and which branch to
// render once a lab result is known. It works purely on loaded definitions,
// state records and the sample snapshot.
type Resolver struct {
	// mainPathMaxPosition classifies main-path nodes by position when no
	// node definition carries the is_main_path flag.
	mainPathMaxPosition int
}

func NewResolver(mainPathMaxPosition int) *Resolver {
	return &Resolver{mainPathMaxPosition: mainPathMaxPosition}
}

// ResolveInput bundles everything the resolver reads. Nodes must be active
// definitions sorted by position; Transitions active, sorted by display order.
type ResolveInput struct {
	Nodes       []model.WorkflowNode
	Transitions []model.WorkflowTransition
	States      []model.SampleWorkflowState
	Sample      model.SampleSnapshot
	Templates   map[uuid.UUID]model.TemplateRef
}

// Resolve produces the rendered timeline for a sample. It never fails: an
// unconfigured workflow yields an empty view.
func (r *Resolver) Resolve(input ResolveInput) model.ResolvedWorkflow {
	if len(input.Nodes) == 0 {
		return model.ResolvedWorkflow{Configured: false, Steps: []model.ResolvedStep{}, CurrentIndex: -1}
	}

	resolved := model.ResolvedWorkflow{Configured: true, CurrentIndex: -1}

	statesByNode := indexStatesByNode(input.States)
	legacy := NewLegacyFieldInference(input.Sample)

	// Main path: non-terminal, non-decision nodes. The is_main_path flag
	// wins when any node carries it; otherwise fall back to the position
	// cutoff legacy definitions rely on.
	flagged := false
	for _, node := range input.Nodes {
		if node.IsMainPath {
			flagged = true
			break
		}
	}

	lastComplete := -1
	for _, node := range input.Nodes {
		if node.IsEndNode || node.NodeType == model.NodeTypeDecision {
			continue
		}
		if flagged {
			if !node.IsMainPath {
				continue
			}
		} else if node.Position > r.mainPathMaxPosition {
			continue
		}

		step := r.buildStep(model.StepKindMain, node, statesByNode, legacy, input.Templates)
		if step.Complete {
			lastComplete = len(resolved.Steps)
		}
		resolved.Steps = append(resolved.Steps, step)
	}

	// The active step sits immediately after the last complete one, clamped
	// to the final main-path step.
	if len(resolved.Steps) > 0 {
		current := lastComplete + 1
		if current >= len(resolved.Steps) {
			current = len(resolved.Steps) - 1
		}
		resolved.Steps[current].Current = true
		resolved.CurrentIndex = current
	}

	decision := findDecisionNode(input.Nodes)
	if decision == nil {
		return resolved
	}

	decisionStep := r.buildStep(model.StepKindDecision, *decision, statesByNode, legacy, input.Templates)
	resolved.Steps = append(resolved.Steps, decisionStep)

	outgoing := transitionsFrom(input.Transitions, decision.ID)
	if len(outgoing) == 0 {
		return resolved
	}

	nodeData := nodeDataByNode(input.States)

	switch {
	case input.Sample.HasLabResult():
		matched := 0
		for _, t := range outgoing {
			if t.ConditionType != model.ConditionTypeLabResult {
				continue
			}
			if !TransitionMatches(t, input.Sample, nodeData) {
				continue
			}
			target := findNode(input.Nodes, t.ToNodeID)
			if target == nil {
				slog.Warn("transition targets unknown or inactive node",
					"transition_id", t.ID, "to_node_id", t.ToNodeID)
				continue
			}
			step := r.buildStep(model.StepKindBranch, *target, statesByNode, legacy, input.Templates)
			step.BranchLabel = t.Label
			resolved.Steps = append(resolved.Steps, step)
			matched++
		}
		if matched == 0 {
			// No instructions configured for this outcome. Rendering stays
			// silent; the flag lets admins find the gap.
			resolved.UnmatchedLabResult = true
			slog.Warn("lab result has no matching workflow transition",
				"sample_id", input.Sample.SampleID, "lab_result", input.Sample.LabResult)
		}
	case input.Sample.LabReportDate != nil:
		resolved.Steps = append(resolved.Steps, model.ResolvedStep{Kind: model.StepKindAwaiting})
		resolved.AwaitingLabResult = true
	}

	return resolved
}

// buildStep assembles one timeline entry. Explicit completed state wins over
// legacy inference; the inferred date is only displayed when no explicit
// record exists.
func (r *Resolver) buildStep(
	kind model.StepKind,
	node model.WorkflowNode,
	statesByNode map[uuid.UUID]*model.SampleWorkflowState,
	legacy *LegacyFieldInference,
	templates map[uuid.UUID]model.TemplateRef,
) model.ResolvedStep {
	nodeCopy := node
	step := model.ResolvedStep{Kind: kind, Node: &nodeCopy}

	if state, ok := statesByNode[node.ID]; ok {
		step.NodeData = state.NodeData
		if state.Status == model.StateStatusCompleted {
			step.Complete = true
			step.CompletedAt = state.CompletedAt
		}
	}
	if !step.Complete {
		if complete, date := legacy.NodeComplete(node); complete {
			step.Complete = true
			step.CompletedAt = date
		}
	}

	for _, templateID := range node.TemplateIDs {
		if ref, ok := templates[templateID]; ok {
			step.Templates = append(step.Templates, ref)
		}
	}

	return step
}

func indexStatesByNode(states []model.SampleWorkflowState) map[uuid.UUID]*model.SampleWorkflowState {
	byNode := make(map[uuid.UUID]*model.SampleWorkflowState, len(states))
	for i := range states {
		state := &states[i]
		existing, ok := byNode[state.CurrentNodeID]
		if !ok || state.EnteredAt.After(existing.EnteredAt) {
			byNode[state.CurrentNodeID] = state
		}
	}
	return byNode
}

func nodeDataByNode(states []model.SampleWorkflowState) map[uuid.UUID]model.JSONMap {
	byNode := make(map[uuid.UUID]model.JSONMap, len(states))
	for i := range states {
		if states[i].NodeData != nil {
			byNode[states[i].CurrentNodeID] = states[i].NodeData
		}
	}
	return byNode
}

func findDecisionNode(nodes []model.WorkflowNode) *model.WorkflowNode {
	for i := range nodes {
		if nodes[i].NodeType == model.NodeTypeDecision {
			return &nodes[i]
		}
	}
	return nil
}

func findNode(nodes []model.WorkflowNode, id uuid.UUID) *model.WorkflowNode {
	for i := range nodes {
		if nodes[i].ID == id {
			return &nodes[i]
		}
	}
	return nil
}

func transitionsFrom(transitions []model.WorkflowTransition, fromNodeID uuid.UUID) []model.WorkflowTransition {
	var outgoing []model.WorkflowTransition
	for _, t := range transitions {
		if t.FromNodeID == fromNodeID {
			outgoing = append(outgoing, t)
		}
	}
	return outgoing
}
