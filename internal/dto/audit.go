package dto

import (
	"encoding/json"
	"time"

	"github.com/SscSPs/ledger_service/internal/core/domain"
)

// ListAuditParams defines query parameters for the audit trail.
type ListAuditParams struct {
	TableName string `form:"tableName" binding:"omitempty,oneof=accounts transactions account_balances"`
	RecordID  string `form:"recordId"`
	UserID    string `form:"userId"`
	Page      int    `form:"page,default=1" binding:"min=1"`
	Limit     int    `form:"limit,default=50" binding:"min=1,max=500"`
}

// ToFilter converts the query parameters into a domain filter.
func (p ListAuditParams) ToFilter() domain.AuditFilter {
	f := domain.AuditFilter{Page: p.Page, Limit: p.Limit}
	if p.TableName != "" {
		f.TableName = &p.TableName
	}
	if p.RecordID != "" {
		f.RecordID = &p.RecordID
	}
	if p.UserID != "" {
		f.UserID = &p.UserID
	}
	return f
}

// AuditEntryResponse defines the data returned for an audit trail record.
type AuditEntryResponse struct {
	AuditID   string          `json:"auditId"`
	TableName string          `json:"tableName"`
	RecordID  string          `json:"recordId"`
	UserID    *string         `json:"userId,omitempty"`
	OldValues json.RawMessage `json:"oldValues,omitempty" swaggertype:"object"`
	NewValues json.RawMessage `json:"newValues,omitempty" swaggertype:"object"`
	Timestamp time.Time       `json:"timestamp"`
	Checksum  string          `json:"checksum"`
}

// ListAuditResponse is one page of the audit trail.
type ListAuditResponse struct {
	Entries []AuditEntryResponse `json:"entries"`
	Page    int                  `json:"page"`
	Limit   int                  `json:"limit"`
}

// AuditVerificationResponse reports the result of a checksum verification pass.
type AuditVerificationResponse struct {
	Checked    int      `json:"checked"`
	Mismatched []string `json:"mismatched"`
	Valid      bool     `json:"valid"`
}

// ToAuditEntryResponses converts a slice of audit entries.
func ToAuditEntryResponses(entries []domain.AuditTrailEntry) []AuditEntryResponse {
	res := make([]AuditEntryResponse, len(entries))
	for i, e := range entries {
		res[i] = AuditEntryResponse{
			AuditID:   e.AuditID,
			TableName: e.TableName,
			RecordID:  e.RecordID,
			UserID:    e.UserID,
			OldValues: e.OldValues,
			NewValues: e.NewValues,
			Timestamp: e.Timestamp,
			Checksum:  e.Checksum,
		}
	}
	return res
}

// ToAuditVerificationResponse converts a domain.AuditVerification to its DTO.
func ToAuditVerificationResponse(v *domain.AuditVerification) AuditVerificationResponse {
	mismatched := v.Mismatched
	if mismatched == nil {
		mismatched = []string{}
	}
	return AuditVerificationResponse{Checked: v.Checked, Mismatched: mismatched, Valid: len(mismatched) == 0}
}
