package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/surveylogic/pkg/domain"
)

// endNodeID is the synthetic node EndSurvey edges point at.
const endNodeID = "__end"

// GraphOverlay contains evaluation results to visualize on the graph.
type GraphOverlay struct {
	Visible []string
	Hidden  []string
	Current string
}

// GenerateMermaid produces a Mermaid flowchart from a logic map.
// Questions are chained in display order. Rule edges are drawn on top:
// - Show/Hide: dotted, from the tested question to the affected one
// - Skip/JumpTo: thick, to the destination
// - EndSurvey: dotted, to a terminal node
// Node shapes: conditional questions {{hexagon}}, questions carrying rules [/parallelogram/],
// everything else [rectangle].
func GenerateMermaid(m domain.LogicMap, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	hasEnd := false
	for _, e := range m.Edges {
		if e.Action == domain.ActionEndSurvey {
			hasEnd = true
			break
		}
	}

	for _, n := range m.Nodes {
		opener, closer := "[", "]"
		switch {
		case n.IsConditional:
			opener, closer = "{{", "}}"
		case n.HasLogic:
			opener, closer = "[/", "/]"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", sanitizeMermaidID(n.ID), opener, nodeLabel(n), closer))
	}
	if hasEnd {
		sb.WriteString(fmt.Sprintf("    %s((\"end\"))\n", endNodeID))
	}

	for i := 1; i < len(m.Nodes); i++ {
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", sanitizeMermaidID(m.Nodes[i-1].ID), sanitizeMermaidID(m.Nodes[i].ID)))
	}

	for _, e := range m.Edges {
		from := sanitizeMermaidID(e.SourceID)
		label := escape(e.Label)
		switch e.Action {
		case domain.ActionShow, domain.ActionHide:
			if e.TargetID == "" {
				continue
			}
			sb.WriteString(fmt.Sprintf("    %s -. \"%s\" .-> %s\n", from, label, sanitizeMermaidID(e.TargetID)))
		case domain.ActionSkip, domain.ActionJumpTo:
			if e.TargetID == "" {
				continue
			}
			sb.WriteString(fmt.Sprintf("    %s == \"%s\" ==> %s\n", from, label, sanitizeMermaidID(e.TargetID)))
		case domain.ActionEndSurvey:
			sb.WriteString(fmt.Sprintf("    %s -. \"%s\" .-> %s\n", from, label, endNodeID))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme.
		sb.WriteString("    classDef visible fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef hidden fill:#eeeeee,stroke:#9e9e9e,stroke-dasharray:4 4,color:#757575;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		writeClass(&sb, overlay.Visible, "visible")
		writeClass(&sb, overlay.Hidden, "hidden")
		if overlay.Current != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.Current)))
		}
	}

	return sb.String()
}

func writeClass(sb *strings.Builder, ids []string, class string) {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		safeID := sanitizeMermaidID(id)
		if safeID == "" || seen[safeID] {
			continue
		}
		seen[safeID] = true
		sb.WriteString(fmt.Sprintf("    class %s %s;\n", safeID, class))
	}
}

func nodeLabel(n domain.LogicNode) string {
	if n.Text == "" {
		return escape(n.ID)
	}
	return escape(n.ID + ": " + n.Text)
}

// escape replaces double quotes, which would close a Mermaid label.
func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
