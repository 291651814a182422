package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/openfsis/fsis/internal/workflow/model"
)

func mainPathNode(name string, position int) model.WorkflowNode {
	return model.WorkflowNode{
		BaseModel: model.BaseModel{ID: uuid.New()},
		Name:      name,
		Position:  position,
		NodeType:  model.NodeTypeAction,
		Status:    model.NodeStatusActive,
	}
}

func decisionNode(name string, position int) model.WorkflowNode {
	node := mainPathNode(name, position)
	node.NodeType = model.NodeTypeDecision
	return node
}

func branchNode(name string, position int) model.WorkflowNode {
	node := mainPathNode(name, position)
	return node
}

func labResultTransition(from, to uuid.UUID, value, label string) model.WorkflowTransition {
	return model.WorkflowTransition{
		BaseModel:      model.BaseModel{ID: uuid.New()},
		FromNodeID:     from,
		ToNodeID:       to,
		ConditionType:  model.ConditionTypeLabResult,
		ConditionValue: value,
		Label:          label,
		Status:         model.NodeStatusActive,
	}
}

func TestResolver_EmptyConfiguration(t *testing.T) {
	resolver := NewResolver(2)

	resolved := resolver.Resolve(ResolveInput{})

	assert.False(t, resolved.Configured)
	assert.Empty(t, resolved.Steps)
	assert.Equal(t, -1, resolved.CurrentIndex)
}

func TestResolver_CurrentStepFollowsLastComplete(t *testing.T) {
	resolver := NewResolver(2)
	lifted := mainPathNode("Sample Lifted", 0)
	dispatched := mainPathNode("Dispatched to Lab", 1)
	received := mainPathNode("Report Received", 2)

	liftedDate := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	sampleID := uuid.New()

	resolved := resolver.Resolve(ResolveInput{
		Nodes: []model.WorkflowNode{lifted, dispatched, received},
		Sample: model.SampleSnapshot{
			SampleID:   sampleID,
			LiftedDate: &liftedDate,
		},
	})

	assert.True(t, resolved.Configured)
	assert.Len(t, resolved.Steps, 3)
	assert.True(t, resolved.Steps[0].Complete)
	assert.Equal(t, &liftedDate, resolved.Steps[0].CompletedAt)
	assert.False(t, resolved.Steps[1].Complete)
	assert.True(t, resolved.Steps[1].Current)
	assert.Equal(t, 1, resolved.CurrentIndex)
}

func TestResolver_CurrentStepClampedToLastMainStep(t *testing.T) {
	resolver := NewResolver(2)
	lifted := mainPathNode("Sample Lifted", 0)
	dispatched := mainPathNode("Dispatched to Lab", 1)

	liftedDate := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	dispatchDate := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)

	resolved := resolver.Resolve(ResolveInput{
		Nodes: []model.WorkflowNode{lifted, dispatched},
		Sample: model.SampleSnapshot{
			SampleID:     uuid.New(),
			LiftedDate:   &liftedDate,
			DispatchDate: &dispatchDate,
		},
	})

	assert.Len(t, resolved.Steps, 2)
	assert.True(t, resolved.Steps[0].Complete)
	assert.True(t, resolved.Steps[1].Complete)
	assert.Equal(t, 1, resolved.CurrentIndex)
	assert.True(t, resolved.Steps[1].Current)
}

func TestResolver_ExplicitStateWinsOverLegacyInference(t *testing.T) {
	resolver := NewResolver(2)
	lifted := mainPathNode("Sample Lifted", 0)
	dispatched := mainPathNode("Dispatched to Lab", 1)

	completedAt := time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)
	sampleID := uuid.New()

	resolved := resolver.Resolve(ResolveInput{
		Nodes: []model.WorkflowNode{lifted, dispatched},
		States: []model.SampleWorkflowState{
			{
				SampleID:      sampleID,
				CurrentNodeID: lifted.ID,
				NodeData:      model.JSONMap{"notes": "sealed on site"},
				EnteredAt:     completedAt,
				CompletedAt:   &completedAt,
				Status:        model.StateStatusCompleted,
			},
		},
		Sample: model.SampleSnapshot{SampleID: sampleID},
	})

	assert.True(t, resolved.Steps[0].Complete)
	assert.Equal(t, &completedAt, resolved.Steps[0].CompletedAt)
	assert.Equal(t, model.JSONMap{"notes": "sealed on site"}, resolved.Steps[0].NodeData)
	assert.Equal(t, 1, resolved.CurrentIndex)
}

func TestResolver_PositionCutoffExcludesLaterNodes(t *testing.T) {
	resolver := NewResolver(2)
	nodes := []model.WorkflowNode{
		mainPathNode("Sample Lifted", 0),
		mainPathNode("Dispatched to Lab", 1),
		mainPathNode("Report Received", 2),
		mainPathNode("Follow-up Visit", 3),
	}

	resolved := resolver.Resolve(ResolveInput{
		Nodes:  nodes,
		Sample: model.SampleSnapshot{SampleID: uuid.New()},
	})

	assert.Len(t, resolved.Steps, 3)
	for _, step := range resolved.Steps {
		assert.NotEqual(t, "Follow-up Visit", step.Node.Name)
	}
}

func TestResolver_MainPathFlagOverridesPositionCutoff(t *testing.T) {
	resolver := NewResolver(2)
	flagged := mainPathNode("Follow-up Visit", 5)
	flagged.IsMainPath = true
	unflagged := mainPathNode("Sample Lifted", 0)

	resolved := resolver.Resolve(ResolveInput{
		Nodes:  []model.WorkflowNode{unflagged, flagged},
		Sample: model.SampleSnapshot{SampleID: uuid.New()},
	})

	// Once any node carries the flag, unflagged nodes drop off the main path.
	assert.Len(t, resolved.Steps, 1)
	assert.Equal(t, "Follow-up Visit", resolved.Steps[0].Node.Name)
}

func TestResolver_DecisionBranchMatchesLabResult(t *testing.T) {
	resolver := NewResolver(2)
	lifted := mainPathNode("Sample Lifted", 0)
	decision := decisionNode("Lab Result", 3)
	unsafeBranch := branchNode("Seize and Destroy", 4)
	unsafeBranch.Position = 4
	safeBranch := branchNode("Release Sample", 4)

	labReportDate := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	resolved := resolver.Resolve(ResolveInput{
		Nodes: []model.WorkflowNode{lifted, decision, unsafeBranch, safeBranch},
		Transitions: []model.WorkflowTransition{
			labResultTransition(decision.ID, unsafeBranch.ID, "unsafe", "Unsafe food"),
			labResultTransition(decision.ID, safeBranch.ID, "not_unsafe", "Fit for consumption"),
		},
		Sample: model.SampleSnapshot{
			SampleID:      uuid.New(),
			LabReportDate: &labReportDate,
			LabResult:     "UNSAFE",
		},
	})

	// main step + decision step + matched branch
	assert.Len(t, resolved.Steps, 3)
	decisionStep := resolved.Steps[1]
	assert.Equal(t, model.StepKindDecision, decisionStep.Kind)
	assert.True(t, decisionStep.Complete)

	branch := resolved.Steps[2]
	assert.Equal(t, model.StepKindBranch, branch.Kind)
	assert.Equal(t, "Seize and Destroy", branch.Node.Name)
	assert.Equal(t, "Unsafe food", branch.BranchLabel)
	assert.False(t, resolved.UnmatchedLabResult)
	assert.False(t, resolved.AwaitingLabResult)
}

func TestResolver_UnmatchedLabResultIsFlagged(t *testing.T) {
	resolver := NewResolver(2)
	lifted := mainPathNode("Sample Lifted", 0)
	decision := decisionNode("Lab Result", 3)
	unsafeBranch := branchNode("Seize and Destroy", 4)

	labReportDate := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	resolved := resolver.Resolve(ResolveInput{
		Nodes: []model.WorkflowNode{lifted, decision, unsafeBranch},
		Transitions: []model.WorkflowTransition{
			labResultTransition(decision.ID, unsafeBranch.ID, "unsafe", "Unsafe food"),
		},
		Sample: model.SampleSnapshot{
			SampleID:      uuid.New(),
			LabReportDate: &labReportDate,
			LabResult:     "substandard",
		},
	})

	assert.True(t, resolved.UnmatchedLabResult)
	// Only the main step and the decision step render.
	assert.Len(t, resolved.Steps, 2)
}

func TestResolver_AwaitingLabResultPlaceholder(t *testing.T) {
	resolver := NewResolver(2)
	lifted := mainPathNode("Sample Lifted", 0)
	decision := decisionNode("Lab Result", 3)
	unsafeBranch := branchNode("Seize and Destroy", 4)

	labReportDate := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	resolved := resolver.Resolve(ResolveInput{
		Nodes: []model.WorkflowNode{lifted, decision, unsafeBranch},
		Transitions: []model.WorkflowTransition{
			labResultTransition(decision.ID, unsafeBranch.ID, "unsafe", "Unsafe food"),
		},
		Sample: model.SampleSnapshot{
			SampleID:      uuid.New(),
			LabReportDate: &labReportDate,
			LabResult:     "pending",
		},
	})

	assert.True(t, resolved.AwaitingLabResult)
	last := resolved.Steps[len(resolved.Steps)-1]
	assert.Equal(t, model.StepKindAwaiting, last.Kind)
	assert.Nil(t, last.Node)
}

func TestResolver_DecisionWithoutTransitionsRendersNoBranch(t *testing.T) {
	resolver := NewResolver(2)
	lifted := mainPathNode("Sample Lifted", 0)
	decision := decisionNode("Lab Result", 3)

	labReportDate := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	resolved := resolver.Resolve(ResolveInput{
		Nodes: []model.WorkflowNode{lifted, decision},
		Sample: model.SampleSnapshot{
			SampleID:      uuid.New(),
			LabReportDate: &labReportDate,
			LabResult:     "unsafe",
		},
	})

	assert.Len(t, resolved.Steps, 2)
	assert.False(t, resolved.UnmatchedLabResult)
	assert.False(t, resolved.AwaitingLabResult)
}

func TestResolver_LatestStateWinsPerNode(t *testing.T) {
	resolver := NewResolver(2)
	lifted := mainPathNode("Sample Lifted", 0)
	sampleID := uuid.New()

	earlier := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	later := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	resolved := resolver.Resolve(ResolveInput{
		Nodes: []model.WorkflowNode{lifted},
		States: []model.SampleWorkflowState{
			{
				SampleID:      sampleID,
				CurrentNodeID: lifted.ID,
				NodeData:      model.JSONMap{"notes": "first"},
				EnteredAt:     earlier,
				Status:        model.StateStatusActive,
			},
			{
				SampleID:      sampleID,
				CurrentNodeID: lifted.ID,
				NodeData:      model.JSONMap{"notes": "second"},
				EnteredAt:     later,
				CompletedAt:   &later,
				Status:        model.StateStatusCompleted,
			},
		},
		Sample: model.SampleSnapshot{SampleID: sampleID},
	})

	assert.True(t, resolved.Steps[0].Complete)
	assert.Equal(t, model.JSONMap{"notes": "second"}, resolved.Steps[0].NodeData)
}

func TestResolver_TemplatesAttachedToSteps(t *testing.T) {
	resolver := NewResolver(2)
	templateID := uuid.New()
	lifted := mainPathNode("Sample Lifted", 0)
	lifted.TemplateIDs = model.UUIDArray{templateID}

	resolved := resolver.Resolve(ResolveInput{
		Nodes:  []model.WorkflowNode{lifted},
		Sample: model.SampleSnapshot{SampleID: uuid.New()},
		Templates: map[uuid.UUID]model.TemplateRef{
			templateID: {ID: templateID, Name: "Seizure Notice", Version: "2"},
		},
	})

	assert.Len(t, resolved.Steps[0].Templates, 1)
	assert.Equal(t, "Seizure Notice", resolved.Steps[0].Templates[0].Name)
}
