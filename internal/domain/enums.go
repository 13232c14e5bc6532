package domain

type NodeKind string

const (
	NodeGroup NodeKind = "group"
	NodeItem  NodeKind = "item"
)

// ParseNodeKind accepts "group"/"item" and their plural forms.
func ParseNodeKind(s string) (NodeKind, bool) {
	switch s {
	case "group", "groups":
		return NodeGroup, true
	case "item", "items":
		return NodeItem, true
	}
	return "", false
}

type EstimateStatus string

const (
	EstimateDraft     EstimateStatus = "draft"
	EstimateSent      EstimateStatus = "sent"
	EstimateAccepted  EstimateStatus = "accepted"
	EstimateRejected  EstimateStatus = "rejected"
	EstimateConverted EstimateStatus = "converted"
)

// ValidEstimateStatuses is the canonical set of accepted status strings.
var ValidEstimateStatuses = map[string]bool{
	"draft": true, "sent": true, "accepted": true,
	"rejected": true, "converted": true,
}

type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobInProgress JobStatus = "in_progress"
	JobComplete   JobStatus = "complete"
)

// ItemMode tells whether an item was typed in by hand or copied from a
// costbook entry.
type ItemMode string

const (
	ModeCustom  ItemMode = "custom"
	ModeCatalog ItemMode = "catalog"
)

// Units offered by the structured unit picker. Items store the unit as free
// text, so values outside this list are still accepted.
var Units = []string{"ea", "sq m", "sq ft", "m³", "ton", "lm", "lf", "hr", "ls"}

// IsKnownUnit reports whether u is one of the picker units.
func IsKnownUnit(u string) bool {
	for _, known := range Units {
		if u == known {
			return true
		}
	}
	return false
}
