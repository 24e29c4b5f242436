package domain

import (
	"encoding/hex"
	"encoding/json"
	"time"

	"golang.org/x/crypto/sha3"
)

// Audited table names.
const (
	AuditTableAccounts        = "accounts"
	AuditTableTransactions    = "transactions"
	AuditTableAccountBalances = "account_balances"
)

// AuditTrailEntry is one append-only record of a ledger-affecting mutation.
type AuditTrailEntry struct {
	AuditID   string          `json:"auditID"`
	TableName string          `json:"tableName"`
	RecordID  string          `json:"recordID"`
	UserID    *string         `json:"userID,omitempty"`
	OldValues json.RawMessage `json:"oldValues,omitempty"`
	NewValues json.RawMessage `json:"newValues,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Checksum  string          `json:"checksum"`
}

// AuditFilter narrows audit trail queries. Page is 1-based.
type AuditFilter struct {
	TableName *string
	RecordID  *string
	UserID    *string
	Page      int
	Limit     int
}

// Offset returns the row offset for the filter's page.
func (f AuditFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// AuditVerification reports the outcome of recomputing audit checksums.
type AuditVerification struct {
	Checked    int      `json:"checked"`
	Mismatched []string `json:"mismatched"`
}

// ComputeChecksum returns the hex SHA3-256 digest of the entry's contents. The Checksum
// field itself is not part of the digest. Timestamps are hashed at microsecond precision in UTC.
func (e AuditTrailEntry) ComputeChecksum() string {
	h := sha3.New256()
	write := func(s string) {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}
	write(e.AuditID)
	write(e.TableName)
	write(e.RecordID)
	if e.UserID != nil {
		write(*e.UserID)
	} else {
		write("")
	}
	write(string(e.OldValues))
	write(string(e.NewValues))
	write(e.Timestamp.UTC().Truncate(time.Microsecond).Format(time.RFC3339Nano))
	return hex.EncodeToString(h.Sum(nil))
}
