package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/roach88/ctlog/internal/event"
)

// marshalFields serializes the kind-specific fields of e to JSON for the
// events.fields column, so ad-hoc queries can reach any field with
// json_extract.
func marshalFields(e event.Event) (string, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("marshal %s fields: %w", e.Kind(), err)
	}
	return string(data), nil
}

func nullInt(v int64, ok bool) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: ok}
}

func nullString(v string, ok bool) sql.NullString {
	return sql.NullString{String: v, Valid: ok}
}
