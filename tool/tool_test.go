package tool

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/recipeflow/core"
	"github.com/hupe1980/recipeflow/internal/util"
)

// -------------------- Schema & Validation Tests --------------------

type sampleSchema struct {
	A string `json:"a" description:"Field A"`
	B *int   `json:"b" description:"Optional pointer field"`
	C int    `json:"c,omitempty" description:"Omit empty field"`
}

func TestCreateSchema(t *testing.T) {
	schema := util.CreateSchema(sampleSchema{})
	props, ok := schema["properties"].(map[string]any)
	assert.True(t, ok)
	// Properties present
	assert.Contains(t, props, "a")
	assert.Contains(t, props, "b")
	assert.Contains(t, props, "c")
	// Required only includes non-pointer, non-omitempty exported fields
	req, _ := schema["required"].([]string)
	if req == nil { // reflection may produce []any
		ifaceReq, _ := schema["required"].([]any)
		for _, v := range ifaceReq {
			req = append(req, v.(string))
		}
	}
	assert.ElementsMatch(t, []string{"a"}, req)
}

func TestValidateParameters(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"x": map[string]any{"type": "integer"},
		},
		// Use []any to mirror possible JSON decoded schema shape
		"required": []any{"x"},
	}

	// Success
	err := util.ValidateParameters(map[string]any{"x": 5}, schema)
	assert.NoError(t, err)

	// Missing required
	err = util.ValidateParameters(map[string]any{}, schema)
	assert.Error(t, err)
	if vErr, ok := err.(*ValidationError); ok {
		assert.Equal(t, "x", vErr.Field)
	} else {
		t.Fatalf("expected ValidationError, got %T", err)
	}

	// Wrong type
	err = util.ValidateParameters(map[string]any{"x": "not-int"}, schema)
	assert.Error(t, err)
	if vErr, ok := err.(*ValidationError); ok {
		assert.Contains(t, vErr.Message, "expected type integer")
	} else {
		t.Fatalf("expected ValidationError, got %T", err)
	}
}

func TestRequiredFields(t *testing.T) {
	// Both the Go-constructed and JSON-decoded "required" shapes normalize
	assert.Equal(t, []string{"a"}, util.RequiredFields(map[string]any{"required": []string{"a"}}))
	assert.Equal(t, []string{"a", "b"}, util.RequiredFields(map[string]any{"required": []any{"a", "b"}}))
	assert.Nil(t, util.RequiredFields(map[string]any{}))
}

func TestValidateValue_Nested(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"entries": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name": map[string]any{"type": "string"},
					},
					"required": []string{"name"},
				},
			},
		},
		"required": []string{"entries"},
	}

	// Success
	err := util.ValidateValue(map[string]any{
		"entries": []any{map[string]any{"name": "ok"}},
	}, schema)
	assert.NoError(t, err)

	// Nested failure names the indexed path
	err = util.ValidateValue(map[string]any{
		"entries": []any{map[string]any{"name": "ok"}, map[string]any{}},
	}, schema)
	require.Error(t, err)
	var vErr *util.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "entries[1].name", vErr.Field)
}

// -------------------- FunctionTool Tests --------------------

func TestFunctionTool_Success(t *testing.T) {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "number"},
			"b": map[string]any{"type": "number"},
		},
		"required": []string{"a", "b"},
	}

	sumTool := NewFunctionTool("sum", "Add numbers", params, func(_ *core.ToolContext, args map[string]any) (any, error) {
		a := args["a"].(float64)
		b := args["b"].(float64)
		return a + b, nil
	})

	tc := core.NewToolContext("run1", "fc1", nil)
	result, err := sumTool.Call(tc, map[string]any{"a": 2.0, "b": 3.0})
	assert.NoError(t, err)
	assert.Equal(t, 5.0, result)
}

func TestFunctionTool_ValidationError(t *testing.T) {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "number"},
		},
		"required": []any{"a"},
	}
	tTool := NewFunctionTool("test", "Test", params, func(_ *core.ToolContext, _ map[string]any) (any, error) {
		return 0, nil
	})
	tc := core.NewToolContext("run1", "fc2", nil)
	_, err := tTool.Call(tc, map[string]any{})
	assert.Error(t, err)
	toolErr, ok := err.(*ToolError)
	assert.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)
}

func TestFunctionTool_ExecutionError(t *testing.T) {
	failTool := NewFunctionTool("fail", "Always fails",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(_ *core.ToolContext, _ map[string]any) (any, error) {
			return nil, errors.New("boom")
		})
	tc := core.NewToolContext("run1", "fc3", nil)
	_, err := failTool.Call(tc, map[string]any{})
	require.Error(t, err)
	toolErr, ok := err.(*ToolError)
	require.True(t, ok)
	assert.Equal(t, "EXECUTION_ERROR", toolErr.Code)
}

// -------------------- Unit Converter Tests --------------------

func TestConvert(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		unit   string
		want   float64
	}{
		{name: "cups", amount: 2.0, unit: "cups", want: 240.0},
		{name: "cup singular", amount: 1.0, unit: "cup", want: 120.0},
		{name: "case insensitive", amount: 0.5, unit: "Cups", want: 60.0},
		{name: "unknown unit identity", amount: 3.0, unit: "tablespoons", want: 3.0},
		{name: "zero passes through", amount: 0.0, unit: "cups", want: 0.0},
		{name: "negative passes through", amount: -1.5, unit: "pinch", want: -1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Convert(tt.amount, tt.unit))
		})
	}
}

func TestUnitConverter_Call(t *testing.T) {
	converter := NewUnitConverter()
	assert.Equal(t, UnitConverterName, converter.Name())

	tc := core.NewToolContext("run1", "fc4", nil)
	result, err := converter.Call(tc, map[string]any{"amount": 2.0, "unit": "cups"})
	require.NoError(t, err)
	assert.Equal(t, 240.0, result)

	// Unknown units never fail; they convert to themselves
	result, err = converter.Call(tc, map[string]any{"amount": 4.0, "unit": "handfuls"})
	require.NoError(t, err)
	assert.Equal(t, 4.0, result)
}

func TestUnitConverter_CallIntegerAmount(t *testing.T) {
	// Hand-constructed argument maps may carry Go ints where decoded JSON
	// carries float64; validation admits both, so the tool must too.
	converter := NewUnitConverter()
	tc := core.NewToolContext("run1", "fc5", nil)

	result, err := converter.Call(tc, map[string]any{"amount": 2, "unit": "cups"})
	require.NoError(t, err)
	assert.Equal(t, 240.0, result)

	result, err = converter.Call(tc, map[string]any{"amount": int64(3), "unit": "cup"})
	require.NoError(t, err)
	assert.Equal(t, 360.0, result)
}
