package service

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/openfsis/fsis/internal/workflow/model"
)

// TransitionMatches evaluates a transition's condition against the sample's
// lab result and the node data recorded at the transition's from-node.
// Lab-result values are compared case-insensitively.
func TransitionMatches(t model.WorkflowTransition, snap model.SampleSnapshot, nodeData map[uuid.UUID]model.JSONMap) bool {
	switch t.ConditionType {
	case model.ConditionTypeAlways:
		return true
	case model.ConditionTypeLabResult:
		if !snap.HasLabResult() {
			return false
		}
		return strings.EqualFold(t.ConditionValue, snap.LabResult)
	case model.ConditionTypeFieldValue:
		data, ok := nodeData[t.FromNodeID]
		if !ok {
			return false
		}
		raw, ok := data[t.ConditionField]
		if !ok {
			return false
		}
		return compare(fmt.Sprint(raw), t.ConditionOperator, t.ConditionValue)
	default:
		return false
	}
}

func compare(value string, op model.ConditionOperator, expected string) bool {
	switch op {
	case model.OperatorEquals:
		return value == expected
	case model.OperatorNotEquals:
		return value != expected
	case model.OperatorContains:
		return strings.Contains(value, expected)
	default:
		return false
	}
}
