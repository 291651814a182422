package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/openfsis/fsis/internal/workflow/model"
)

// SnapshotProvider supplies the legacy workflow fields of a sample.
// Implemented by the sample registry.
type SnapshotProvider interface {
	Snapshot(ctx context.Context, sampleID uuid.UUID) (model.SampleSnapshot, error)
}

// TemplateProvider supplies pass-through document template references.
// Implemented by the template store.
type TemplateProvider interface {
	TemplateRefs(ctx context.Context, templateIDs []uuid.UUID) (map[uuid.UUID]model.TemplateRef, error)
}

// ResolveService loads everything the Position Resolver needs for one sample
// and runs the resolution.
type ResolveService struct {
	resolver    *Resolver
	nodes       *NodeService
	transitions *TransitionService
	states      *StateService
	snapshots   SnapshotProvider
	templates   TemplateProvider
}

func NewResolveService(
	resolver *Resolver,
	nodes *NodeService,
	transitions *TransitionService,
	states *StateService,
	snapshots SnapshotProvider,
	templates TemplateProvider,
) *ResolveService {
	return &ResolveService{
		resolver:    resolver,
		nodes:       nodes,
		transitions: transitions,
		states:      states,
		snapshots:   snapshots,
		templates:   templates,
	}
}

// ResolveForSample produces the rendered workflow timeline for a sample.
func (s *ResolveService) ResolveForSample(ctx context.Context, sampleID uuid.UUID) (*model.ResolvedWorkflow, error) {
	nodes, err := s.nodes.ListActiveNodes(ctx)
	if err != nil {
		return nil, err
	}

	transitions, err := s.transitions.ListActiveTransitions(ctx)
	if err != nil {
		return nil, err
	}

	states, err := s.states.ListStatesBySample(ctx, sampleID)
	if err != nil {
		return nil, err
	}

	snap, err := s.snapshots.Snapshot(ctx, sampleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sample snapshot: %w", err)
	}

	templates := map[uuid.UUID]model.TemplateRef{}
	if s.templates != nil {
		var templateIDs []uuid.UUID
		for _, node := range nodes {
			templateIDs = append(templateIDs, node.TemplateIDs...)
		}
		if len(templateIDs) > 0 {
			templates, err = s.templates.TemplateRefs(ctx, templateIDs)
			if err != nil {
				return nil, fmt.Errorf("failed to load document templates: %w", err)
			}
		}
	}

	resolved := s.resolver.Resolve(ResolveInput{
		Nodes:       nodes,
		Transitions: transitions,
		States:      states,
		Sample:      snap,
		Templates:   templates,
	})
	return &resolved, nil
}
