package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cessadesk/cessadesk/internal/oxidb"
	"github.com/cessadesk/cessadesk/internal/store"
)

// normalizeID converts the _id field from numeric (float64) to string
// since OxiDB returns auto-increment numeric IDs.
func normalizeID(doc map[string]any) {
	if id, ok := doc["_id"]; ok {
		switch v := id.(type) {
		case float64:
			doc["_id"] = fmt.Sprintf("%.0f", v)
		case int:
			doc["_id"] = fmt.Sprintf("%d", v)
		}
		doc["id"] = doc["_id"]
		delete(doc, "_id")
	}
}

// extractID gets the inserted document ID from an OxiDB insert response.
func extractID(result map[string]any) string {
	if id, ok := result["id"]; ok {
		switch v := id.(type) {
		case string:
			return v
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}

// toNumericID converts a string ID to float64 for OxiDB queries.
func toNumericID(id string) any {
	if n, err := strconv.ParseFloat(id, 64); err == nil {
		return n
	}
	return id
}

func byID(id string) map[string]any {
	return map[string]any{"_id": toNumericID(id)}
}

// toDoc flattens a model into a document without its id.
func toDoc(v any) map[string]any {
	data, _ := json.Marshal(v)
	var doc map[string]any
	json.Unmarshal(data, &doc)
	delete(doc, "id")
	delete(doc, "_id")
	return doc
}

func fromDoc(doc map[string]any, out any) error {
	normalizeID(doc)
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal doc: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal doc: %w", err)
	}
	return nil
}

// storeErr maps OxiDB failures onto the store sentinels.
func storeErr(err error) error {
	var dup *oxidb.DuplicateKeyError
	if errors.As(err, &dup) {
		return fmt.Errorf("%w: %s", store.ErrDuplicate, dup.Msg)
	}
	var oe *oxidb.Error
	if errors.As(err, &oe) && strings.Contains(strings.ToLower(oe.Msg), "not found") {
		return fmt.Errorf("%w: %s", store.ErrNotFound, oe.Msg)
	}
	return err
}
