// Package utils holds small shared helpers for tolerant document parsing
// and markdown handling.
package utils

import (
	"encoding/json"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// RepairJSON attempts to fix common JSON defects found in hand-edited or
// tool-emitted report files: single quotes, trailing commas, unclosed
// brackets, comments, stray markdown fences.
func RepairJSON(malformed string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformed)
	if err != nil {
		return "", fmt.Errorf("json repair failed: %w", err)
	}
	return repaired, nil
}

// SmartParseDocument parses a raw report document into a generic map,
// trying progressively more lenient strategies:
//  1. standard JSON
//  2. Hjson
//  3. repaired JSON
//
// Hjson runs before repair: repair never reports failure on Hjson input,
// it just folds the unquoted syntax into garbled string values, whereas
// Hjson either parses the document correctly or errors out.
//
// A document that survives none of them returns an error; callers treat
// that as "this source is absent" rather than failing the entity.
func SmartParseDocument(raw []byte) (map[string]interface{}, error) {
	var doc map[string]interface{}

	if err := json.Unmarshal(raw, &doc); err == nil {
		return doc, nil
	}

	if err := hjson.Unmarshal(raw, &doc); err == nil {
		return doc, nil
	}

	if repaired, err := RepairJSON(string(raw)); err == nil {
		if err := json.Unmarshal([]byte(repaired), &doc); err == nil {
			return doc, nil
		}
	}

	return nil, fmt.Errorf("document is not parsable as JSON, Hjson, or repaired JSON")
}
