package repository

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/equipment-tracker/constants"
	"github.com/joseph-ayodele/equipment-tracker/internal/common"
	"github.com/joseph-ayodele/equipment-tracker/internal/entity"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

// ValidationReport lists the problems found in one snapshot collection.
type ValidationReport struct {
	File     string
	Problems []string
}

func (r *ValidationReport) Error() string {
	return fmt.Sprintf("%s: %d validation problem(s)\n%s", r.File, len(r.Problems), common.Itemize(r.Problems, common.MaxReportedProblems))
}

func (r *ValidationReport) Unwrap() error {
	return common.ErrValidation
}

var (
	schemaOnce  sync.Once
	schemaErr   error
	schemaCache map[string]*jsonschema.Schema
)

// compiledSchemas compiles every embedded schema once, keyed by snapshot
// file name.
func compiledSchemas() (map[string]*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		entries, err := schemaFS.ReadDir("schemas")
		if err != nil {
			schemaErr = fmt.Errorf("list schemas: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			b, err := schemaFS.ReadFile(path.Join("schemas", e.Name()))
			if err != nil {
				schemaErr = fmt.Errorf("read schema %s: %w", e.Name(), err)
				return
			}
			if err := compiler.AddResource(e.Name(), bytes.NewReader(b)); err != nil {
				schemaErr = fmt.Errorf("add schema %s: %w", e.Name(), err)
				return
			}
			names = append(names, e.Name())
		}
		schemaCache = make(map[string]*jsonschema.Schema, len(names))
		for _, n := range names {
			s, err := compiler.Compile(n)
			if err != nil {
				schemaErr = fmt.Errorf("compile schema %s: %w", n, err)
				return
			}
			schemaCache[strings.TrimSuffix(n, ".schema.json")+".json"] = s
		}
	})
	return schemaCache, schemaErr
}

// ValidateCollection checks a serialized collection against its schema and,
// for equipment, the record rules and unique serials. Files without a schema
// only need to be a JSON array.
func ValidateCollection(file string, data []byte) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return &ValidationReport{File: file, Problems: []string{"not valid JSON: " + err.Error()}}
	}
	if _, ok := doc.([]any); !ok {
		return &ValidationReport{File: file, Problems: []string{"top level must be an array"}}
	}

	schemas, err := compiledSchemas()
	if err != nil {
		return err
	}

	var problems []string
	if s, ok := schemas[file]; ok {
		if err := s.Validate(doc); err != nil {
			var verr *jsonschema.ValidationError
			if !errors.As(err, &verr) {
				return fmt.Errorf("validate %s: %w", file, err)
			}
			problems = append(problems, leafMessages(verr)...)
		}
	}

	if file == constants.EquipmentDB {
		problems = append(problems, equipmentProblems(data)...)
	}

	if len(problems) > 0 {
		return &ValidationReport{File: file, Problems: problems}
	}
	return nil
}

func leafMessages(e *jsonschema.ValidationError) []string {
	if len(e.Causes) == 0 {
		loc := e.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		return []string{fmt.Sprintf("%s: %s", loc, e.Message)}
	}
	var out []string
	for _, c := range e.Causes {
		out = append(out, leafMessages(c)...)
	}
	return out
}

// equipmentProblems applies the per-record and cross-record equipment
// rules. A collection that does not decode is left to the schema.
func equipmentProblems(data []byte) []string {
	var records []entity.Equipment
	if err := json.Unmarshal(data, &records); err != nil {
		return nil
	}
	v := common.NewValidator()
	seen := map[string]int{}
	for i, e := range records {
		v.Field(i, "serial", e.Serial, common.Required).
			Field(i, "category", e.Category, common.Required).
			Field(i, "uptimeEstimatePct", e.UptimeEstimatePct, common.Percentage).
			Field(i, "repairCount", e.RepairCount, common.NonNegative).
			Field(i, "totalRepairCost", e.TotalRepairCost, common.NonNegative)
		if e.Serial == "" {
			continue
		}
		if first, dup := seen[e.Serial]; dup {
			v.Add(i, "serial", e.Serial, fmt.Sprintf("duplicates record #%d", first))
			continue
		}
		seen[e.Serial] = i
	}
	if !v.HasErrors() {
		return nil
	}
	out := make([]string, 0, len(v.Errors()))
	for _, e := range v.Errors() {
		out = append(out, e.Error())
	}
	return out
}
