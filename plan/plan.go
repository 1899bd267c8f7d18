// Package plan declares the Planner agent's structured output contract: the
// substitution map and conversion list produced once per workflow run and
// carried into the downstream stages as session memory. It owns the JSON
// schema descriptor handed to the provider, the validating parser that turns
// raw structured data into a typed PlanningResult, and the lenient extraction
// of tool-ready conversion entries.
package plan

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hupe1980/recipeflow/core"
	"github.com/hupe1980/recipeflow/internal/util"
)

// Substitution defines a single ingredient replacement. Immutable once
// produced; all three fields must be non-empty.
type Substitution struct {
	Original   string `json:"original" description:"The exact ingredient name to be replaced."`
	Substitute string `json:"substitute" description:"The new ingredient for the target cuisine/diet."`
	Reason     string `json:"reason" description:"A brief explanation for the swap."`
}

// PlanningResult is the complete structured output of the Planner agent.
// Conversions is intentionally loosely typed: unit/conversion keys belong to
// the tool contract, not the agent schema, so entries arrive as raw mappings
// and are coerced (or skipped) later via ParseConversion.
type PlanningResult struct {
	Conversions   []map[string]any `json:"conversions" description:"Units to convert, e.g. {'amount': 2.0, 'unit': 'cups', 'to_unit': 'grams'}."`
	Substitutions []Substitution   `json:"substitutions" description:"The comprehensive list of ingredient swaps."`
}

// Schema returns the JSON schema descriptor providers must constrain the
// Planner's output to. Derived by reflection so the descriptor and the typed
// parser cannot drift apart.
func Schema() map[string]any {
	return util.CreateSchema(PlanningResult{})
}

// Parse validates raw structured data (a decoded JSON object) against the
// planning schema and returns the typed PlanningResult. Violations surface as
// *core.SchemaValidationError naming the offending field.
func Parse(data map[string]any) (*PlanningResult, error) {
	if err := util.ValidateValue(data, Schema()); err != nil {
		return nil, asSchemaError(err)
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, &core.SchemaValidationError{Message: fmt.Sprintf("planning result not serializable: %v", err)}
	}

	var result PlanningResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, &core.SchemaValidationError{Message: fmt.Sprintf("planning result not decodable: %v", err)}
	}

	for i, sub := range result.Substitutions {
		checks := []struct {
			field string
			value string
		}{
			{"original", sub.Original},
			{"substitute", sub.Substitute},
			{"reason", sub.Reason},
		}
		for _, c := range checks {
			if c.value == "" {
				return nil, &core.SchemaValidationError{
					Field:   fmt.Sprintf("substitutions[%d].%s", i, c.field),
					Message: "must be non-empty",
				}
			}
		}
	}

	return &result, nil
}

// ParsedConversion is a conversion request coerced into the shape the unit
// conversion tool consumes.
type ParsedConversion struct {
	Amount float64
	Unit   string
	ToUnit string
}

// ParseConversion attempts to extract the three required conversion keys from
// a loosely typed entry. The second return value reports success; entries
// missing any key (or carrying uncoercible values) are skipped, not errors.
func ParseConversion(entry map[string]any) (ParsedConversion, bool) {
	amount, ok := toFloat(entry["amount"])
	if !ok {
		return ParsedConversion{}, false
	}
	unit, ok := entry["unit"].(string)
	if !ok {
		return ParsedConversion{}, false
	}
	toUnit, ok := entry["to_unit"].(string)
	if !ok {
		return ParsedConversion{}, false
	}
	return ParsedConversion{Amount: amount, Unit: unit, ToUnit: toUnit}, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// SubstitutionMemory serializes the substitution map into the human-readable
// block embedded in the Stylist prompt as critical memory.
func (p *PlanningResult) SubstitutionMemory() string {
	raw, err := json.MarshalIndent(p.Substitutions, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(raw)
}

// MockPlanningResult returns the deterministic plan emitted by the mock
// client so the pipeline is fully exercisable without credentials.
func MockPlanningResult() *PlanningResult {
	return &PlanningResult{
		Substitutions: []Substitution{
			{Original: "Beef chuck", Substitute: "Firm Tofu", Reason: "Vegetarian protein swap."},
			{Original: "Sour cream", Substitute: "Full-fat Coconut Milk", Reason: "Dairy-free creamy base."},
		},
		Conversions: []map[string]any{
			{"amount": 2.0, "unit": "cups", "to_unit": "grams"},
		},
	}
}

// MockData returns MockPlanningResult as the decoded-JSON mapping a provider
// response would carry, suitable as a mock client structured default.
func MockData() map[string]any {
	raw, _ := json.Marshal(MockPlanningResult())
	var data map[string]any
	_ = json.Unmarshal(raw, &data)
	return data
}

func asSchemaError(err error) error {
	var vErr *util.ValidationError
	if errors.As(err, &vErr) {
		return &core.SchemaValidationError{Field: vErr.Field, Message: vErr.Message}
	}
	return &core.SchemaValidationError{Message: err.Error()}
}
