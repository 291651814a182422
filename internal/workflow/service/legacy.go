package service

import (
	"strings"
	"time"

	"github.com/openfsis/fsis/internal/workflow/model"
)

// LegacyFieldInference infers node completion from a sample's legacy fields
// for samples created before explicit workflow state existed. It feeds the
// same completion interface as explicit state records, keeping the
// name-matching heuristics out of the resolver itself.
type LegacyFieldInference struct {
	snap model.SampleSnapshot
}

func NewLegacyFieldInference(snap model.SampleSnapshot) *LegacyFieldInference {
	return &LegacyFieldInference{snap: snap}
}

// NodeComplete reports whether the node counts as complete based on legacy
// sample fields alone, and the date to display for it.
//
// A decision node is ripe once a lab report exists, regardless of the result.
// Other nodes match by name: "lifted" against the lifted date, "dispatch"
// against the dispatch date, "report"/"received" against the lab report date.
func (l *LegacyFieldInference) NodeComplete(node model.WorkflowNode) (bool, *time.Time) {
	if node.NodeType == model.NodeTypeDecision {
		return l.snap.LabReportDate != nil, l.snap.LabReportDate
	}

	name := strings.ToLower(node.Name)
	switch {
	case strings.Contains(name, "lifted"):
		return l.snap.LiftedDate != nil, l.snap.LiftedDate
	case strings.Contains(name, "dispatch"):
		return l.snap.DispatchDate != nil, l.snap.DispatchDate
	case strings.Contains(name, "report"), strings.Contains(name, "received"):
		return l.snap.LabReportDate != nil, l.snap.LabReportDate
	default:
		return false, nil
	}
}
