package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/joseph-ayodele/equipment-tracker/constants"
	"github.com/joseph-ayodele/equipment-tracker/internal/common"
)

// SchemaDriftError reports that a reserved snapshot would change shape.
type SchemaDriftError struct {
	File     string
	Existing []string
	Incoming []string
	Missing  []string
	Added    []string
}

func (e *SchemaDriftError) Error() string {
	return fmt.Sprintf("schema drift in %s: existing keys [%s], incoming keys [%s] (missing: [%s], added: [%s]); write a new *_v2 file instead of changing the record shape",
		e.File,
		strings.Join(e.Existing, ", "),
		strings.Join(e.Incoming, ", "),
		strings.Join(e.Missing, ", "),
		strings.Join(e.Added, ", "),
	)
}

func (e *SchemaDriftError) Unwrap() error {
	return common.ErrSchemaDrift
}

// IsReserved reports whether file is a snapshot whose shape is protected.
func IsReserved(file string) bool {
	_, ok := constants.ReservedSnapshots[file]
	return ok
}

// CheckSchema compares the key set of the first object in the existing file
// with the key set of the first object in incoming. A missing, unreadable,
// empty or non-array target always passes.
func CheckSchema(file, path string, incoming []byte) error {
	if !IsReserved(file) {
		return nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	var existing []json.RawMessage
	if err := json.Unmarshal(raw, &existing); err != nil || len(existing) == 0 {
		return nil
	}
	prevKeys := firstObjectKeys(existing)

	var next []json.RawMessage
	if err := json.Unmarshal(incoming, &next); err != nil {
		return fmt.Errorf("decode incoming %s: %w", file, err)
	}
	nextKeys := firstObjectKeys(next)

	missing := difference(prevKeys, nextKeys)
	added := difference(nextKeys, prevKeys)
	if len(missing) == 0 && len(added) == 0 {
		return nil
	}
	return &SchemaDriftError{
		File:     file,
		Existing: sortedKeys(prevKeys),
		Incoming: sortedKeys(nextKeys),
		Missing:  missing,
		Added:    added,
	}
}

func firstObjectKeys(items []json.RawMessage) map[string]struct{} {
	for _, it := range items {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(it, &obj); err != nil || obj == nil {
			continue
		}
		keys := make(map[string]struct{}, len(obj))
		for k := range obj {
			keys[k] = struct{}{}
		}
		return keys
	}
	return map[string]struct{}{}
}

func difference(a, b map[string]struct{}) []string {
	var out []string
	for k := range a {
		if _, ok := b[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
