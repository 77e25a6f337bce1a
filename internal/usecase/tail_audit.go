package usecase

import (
	"context"
	"fmt"

	"github.com/loopgate/loopgate/internal/domain"
)

// TailAuditInput contains the parameters for reading the audit log.
// Fields are ordered to minimize memory padding.
type TailAuditInput struct {
	Day string // Day partition (YYYY-MM-DD); empty = tail across partitions
	N   int    // Entry count for tailing (default 50)
}

// TailAuditOutput contains the entries in append order.
type TailAuditOutput struct {
	Entries []domain.AuditEntry
}

// TailAudit reads recorded transitions for compliance review. The log is
// never written through this path.
type TailAudit struct {
	reader domain.AuditReader
}

// NewTailAudit creates a new TailAudit use case.
func NewTailAudit(reader domain.AuditReader) *TailAudit {
	return &TailAudit{reader: reader}
}

// Execute reads the requested entries.
func (uc *TailAudit) Execute(_ context.Context, in TailAuditInput) (*TailAuditOutput, error) {
	if in.Day != "" {
		entries, err := uc.reader.List(in.Day)
		if err != nil {
			return nil, fmt.Errorf("list audit partition: %w", err)
		}
		return &TailAuditOutput{Entries: entries}, nil
	}

	n := in.N
	if n <= 0 {
		n = 50
	}
	entries, err := uc.reader.Tail(n)
	if err != nil {
		return nil, fmt.Errorf("tail audit log: %w", err)
	}
	return &TailAuditOutput{Entries: entries}, nil
}
