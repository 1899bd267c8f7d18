package tool

import (
	"strings"

	"github.com/hupe1980/recipeflow/core"
)

// UnitConverterName is the registered name of the unit conversion tool.
const UnitConverterName = "unit_converter"

// GramsPerCup is the flat cups-to-grams factor, approximate for thick liquids.
// No per-ingredient density model is applied.
const GramsPerCup = 120.0

// volumetricFactors maps case-normalized volumetric units to their conversion
// factor. Units absent from this map pass through unchanged.
var volumetricFactors = map[string]float64{
	"cup":  GramsPerCup,
	"cups": GramsPerCup,
}

// NewUnitConverter returns the tool converting a cooking-volume quantity to a
// standardized amount. Unknown units yield an identity conversion; the tool
// never fails, which the workflow relies on: the conversion stage has no
// error path.
func NewUnitConverter() *FunctionTool {
	return NewFunctionTool(
		UnitConverterName,
		"Convert a common cooking unit quantity to a standard metric amount",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"amount": map[string]any{"type": "number", "description": "Quantity to convert"},
				"unit":   map[string]any{"type": "string", "description": "Source unit, case-insensitive"},
			},
			"required": []string{"amount", "unit"},
		},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			// Argument validation accepts any Go numeric kind for a JSON
			// "number", so coerce instead of asserting float64.
			amount := floatArg(args["amount"])
			unit, _ := args["unit"].(string)

			converted := Convert(amount, unit)

			tc.Logger().Info("tool.unit_converter.converted",
				"amount", amount, "unit", unit, "converted", converted, "fc_id", tc.FunctionCallID())

			return converted, nil
		},
	)
}

// Convert applies the volumetric factor for a known unit or returns the
// amount unchanged. Non-positive amounts are passed through, not rejected.
func Convert(amount float64, unit string) float64 {
	if factor, ok := volumetricFactors[strings.ToLower(unit)]; ok {
		return amount * factor
	}
	return amount
}

// floatArg coerces a schema-validated "number" argument to float64, covering
// every numeric kind the argument validation admits.
func floatArg(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	default:
		return 0
	}
}
