package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/openfsis/fsis/internal/workflow/model"
)

func TestLegacyFieldInference_NameHeuristics(t *testing.T) {
	liftedDate := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	dispatchDate := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	reportDate := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)

	inference := NewLegacyFieldInference(model.SampleSnapshot{
		LiftedDate:    &liftedDate,
		DispatchDate:  &dispatchDate,
		LabReportDate: &reportDate,
	})

	tests := []struct {
		nodeName string
		wantDate *time.Time
	}{
		{"Sample Lifted", &liftedDate},
		{"Dispatched to Laboratory", &dispatchDate},
		{"Lab Report Received", &reportDate},
		{"Results Received", &reportDate},
	}

	for _, tt := range tests {
		t.Run(tt.nodeName, func(t *testing.T) {
			complete, date := inference.NodeComplete(model.WorkflowNode{
				Name:     tt.nodeName,
				NodeType: model.NodeTypeAction,
			})
			assert.True(t, complete)
			assert.Equal(t, tt.wantDate, date)
		})
	}
}

func TestLegacyFieldInference_MissingDatesLeaveNodesIncomplete(t *testing.T) {
	inference := NewLegacyFieldInference(model.SampleSnapshot{})

	for _, name := range []string{"Sample Lifted", "Dispatched to Laboratory", "Lab Report Received"} {
		complete, date := inference.NodeComplete(model.WorkflowNode{
			Name:     name,
			NodeType: model.NodeTypeAction,
		})
		assert.False(t, complete, name)
		assert.Nil(t, date, name)
	}
}

func TestLegacyFieldInference_UnrecognizedNameNeverCompletes(t *testing.T) {
	liftedDate := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	inference := NewLegacyFieldInference(model.SampleSnapshot{LiftedDate: &liftedDate})

	complete, date := inference.NodeComplete(model.WorkflowNode{
		Name:     "Follow-up Visit",
		NodeType: model.NodeTypeAction,
	})

	assert.False(t, complete)
	assert.Nil(t, date)
}

func TestLegacyFieldInference_DecisionRipeOnReportDate(t *testing.T) {
	reportDate := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)

	withReport := NewLegacyFieldInference(model.SampleSnapshot{LabReportDate: &reportDate})
	complete, date := withReport.NodeComplete(model.WorkflowNode{
		Name:     "Lab Result",
		NodeType: model.NodeTypeDecision,
	})
	assert.True(t, complete)
	assert.Equal(t, &reportDate, date)

	withoutReport := NewLegacyFieldInference(model.SampleSnapshot{})
	complete, _ = withoutReport.NodeComplete(model.WorkflowNode{
		Name:     "Lab Result",
		NodeType: model.NodeTypeDecision,
	})
	assert.False(t, complete)
}
