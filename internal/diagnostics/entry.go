package diagnostics

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kaptinlin/jsonrepair"

	"github.com/leofalp/agentswarm/core/recovery"
)

// Entry is one persisted failure.
type Entry struct {
	CorrelationID string                  `json:"correlation_id"`
	CreatedAt     time.Time               `json:"created_at"`
	Report        *recovery.FailureReport `json:"report"`

	// Reconstructed is the pipeline's best-effort text, copied out of the
	// report so it can be read without decoding the attempts.
	Reconstructed string `json:"reconstructed,omitempty"`

	// RepairHint is what a general-purpose JSON repairer makes of
	// Reconstructed. It is advisory and never fed back into the pipeline.
	RepairHint string `json:"repair_hint,omitempty"`
}

// NewEntry builds the entry for report. An empty correlationID is replaced
// with a random one.
func NewEntry(correlationID string, report *recovery.FailureReport, now time.Time) Entry {
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	entry := Entry{
		CorrelationID: correlationID,
		CreatedAt:     now.UTC(),
		Report:        report,
	}
	if report != nil {
		entry.Reconstructed = report.Reconstructed
		entry.RepairHint = repairHint(report.Reconstructed)
	}
	return entry
}

func repairHint(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	repaired, err := jsonrepair.JSONRepair(text)
	if err != nil || repaired == text {
		return ""
	}
	return repaired
}

// safeName maps a correlation id onto a file or key component.
func safeName(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	name := strings.Trim(b.String(), ".")
	if name == "" {
		return "_"
	}
	return name
}
