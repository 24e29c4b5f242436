package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const timeFormat = time.RFC3339Nano // Use a precise time format

// EntryCursor is the position of the last ledger entry returned on a page. Entries are listed
// newest first by (CreatedAt, TransactionID, LineNo).
type EntryCursor struct {
	CreatedAt     time.Time
	TransactionID string
	LineNo        int
}

// Follows reports whether an entry at the given position belongs on a page after the cursor.
func (c EntryCursor) Follows(createdAt time.Time, transactionID string, lineNo int) bool {
	if !createdAt.Equal(c.CreatedAt) {
		return createdAt.Before(c.CreatedAt)
	}
	if transactionID != c.TransactionID {
		return transactionID < c.TransactionID
	}
	return lineNo < c.LineNo
}

// EncodeEntryCursor creates an opaque, URL-safe token for the cursor.
func EncodeEntryCursor(c EntryCursor) string {
	return EncodeMultiFieldToken(c.CreatedAt.UTC().Format(timeFormat), c.TransactionID, strconv.Itoa(c.LineNo))
}

// DecodeEntryCursor parses a token produced by EncodeEntryCursor.
func DecodeEntryCursor(token string) (EntryCursor, error) {
	parts, err := DecodeMultiFieldToken(token)
	if err != nil {
		return EntryCursor{}, err
	}
	if len(parts) != 3 {
		return EntryCursor{}, fmt.Errorf("invalid pagination token format (split)")
	}

	createdAt, err := time.Parse(timeFormat, parts[0])
	if err != nil {
		return EntryCursor{}, fmt.Errorf("invalid pagination token format (created_at parse): %w", err)
	}
	if parts[1] == "" {
		return EntryCursor{}, fmt.Errorf("invalid pagination token format (transaction id)")
	}
	lineNo, err := strconv.Atoi(parts[2])
	if err != nil {
		return EntryCursor{}, fmt.Errorf("invalid pagination token format (line number parse): %w", err)
	}

	return EntryCursor{CreatedAt: createdAt, TransactionID: parts[1], LineNo: lineNo}, nil
}

// EncodeMultiFieldToken creates a token with any number of string fields
func EncodeMultiFieldToken(fields ...string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strings.Join(fields, "|")))
}

// DecodeMultiFieldToken decodes a token into its component fields
func DecodeMultiFieldToken(token string) ([]string, error) {
	decodedBytes, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	return strings.Split(string(decodedBytes), "|"), nil
}
