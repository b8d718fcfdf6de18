package value

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSealed(t *testing.T) {
	var _ Value = Null{}
	var _ Value = String("test")
	var _ Value = Int(42)
	var _ Value = Float(0.5)
	var _ Value = Bool(true)
	var _ Value = Array{String("a"), Int(1)}
	var _ Value = Object{"key": String("value")}
}

func TestObjectSortedKeys(t *testing.T) {
	obj := Object{
		"zebra":  String("z"),
		"apple":  String("a"),
		"banana": String("b"),
	}
	assert.Equal(t, []string{"apple", "banana", "zebra"}, obj.SortedKeys())
}

func TestObjectSortedKeysUTF16Order(t *testing.T) {
	obj := Object{"a": Int(1), "A": Int(2), "aa": Int(3), "aA": Int(4), "Aa": Int(5), "AA": Int(6)}
	assert.Equal(t, []string{"A", "AA", "Aa", "a", "aA", "aa"}, obj.SortedKeys())
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Value
	}{
		{"string", `"bar"`, String("bar")},
		{"int", `42`, Int(42)},
		{"bool", `true`, Bool(true)},
		{"null", `null`, Null{}},
		{"array", `[1,"a"]`, Array{Int(1), String("a")}},
		{"object", `{"foo":{"bar":[true]}}`, Object{"foo": Object{"bar": Array{Bool(true)}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.input))
			require.NoError(t, err)
			assert.True(t, Equal(tt.want, got), "got %#v", got)
		})
	}
}

func TestDecodeNumbers(t *testing.T) {
	tests := []struct {
		input string
		want  Value
	}{
		{`1.5`, Float(1.5)},
		{`-0.25`, Float(-0.25)},
		{`1e3`, Int(1000)},
		{`2.5e-3`, Float(0.0025)},
		{`3.0`, Int(3)},
		{`9223372036854775807`, Int(1<<63 - 1)},
		{`1e300`, Float(1e300)},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Decode([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Decode([]byte(`1e400`))
	require.Error(t, err)
}

func TestFloatJSONRoundTrip(t *testing.T) {
	obj := Object{"price": Float(2.5), "tiny": Float(1e-7), "count": Int(2)}

	data, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"count":2,"price":2.5,"tiny":1e-7}`, string(data))

	var back Object
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, Equal(obj, back), "got %#v", back)
}

func TestObjectJSONRoundTrip(t *testing.T) {
	obj := Object{
		"name":   String("Alice <admin>"),
		"visits": Int(1 << 40),
		"tags":   Array{String("a"), Null{}},
		"nested": Object{"ok": Bool(false)},
	}

	data, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "<admin>", "HTML must be escaped for script embedding")

	var back Object
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, Equal(obj, back))
}

func TestFromGo(t *testing.T) {
	got, err := FromGo(map[string]any{
		"count": 3,
		"ratio": float64(2),
		"list":  []any{"x", true, nil},
	})
	require.NoError(t, err)
	assert.True(t, Equal(Object{
		"count": Int(3),
		"ratio": Int(2),
		"list":  Array{String("x"), Bool(true), Null{}},
	}, got))

	half, err := FromGo(map[string]any{"ratio": 0.5})
	require.NoError(t, err)
	assert.Equal(t, Object{"ratio": Float(0.5)}, half)

	_, err = FromGo(math.NaN())
	require.Error(t, err)

	_, err = FromGo(struct{}{})
	require.Error(t, err)
}

func TestCloneIsolation(t *testing.T) {
	orig := Object{"inner": Object{"foo": String("bar")}, "list": Array{Int(1)}}
	clone := CloneObject(orig)

	clone["inner"].(Object)["foo"] = Int(42)
	clone["list"].(Array)[0] = Int(2)
	clone["added"] = Bool(true)

	assert.Equal(t, String("bar"), orig["inner"].(Object)["foo"])
	assert.Equal(t, Int(1), orig["list"].(Array)[0])
	assert.NotContains(t, orig, "added")
}

func TestCloneObjectNil(t *testing.T) {
	clone := CloneObject(nil)
	require.NotNil(t, clone)
	assert.Empty(t, clone)
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(nil, Null{}))
	assert.True(t, Equal(Object{"a": Int(1)}, Object{"a": Int(1)}))
	assert.False(t, Equal(Object{"a": Int(1)}, Object{"a": String("1")}))
	assert.False(t, Equal(Object{"a": Int(1)}, Object{"b": Int(1)}))
	assert.False(t, Equal(Array{Int(1)}, Array{Int(1), Int(2)}))
	assert.False(t, Equal(Array{Int(1)}, Object{}))
	assert.True(t, Equal(Int(2), Float(2)))
	assert.True(t, Equal(Float(2), Int(2)))
	assert.False(t, Equal(Float(2.5), Int(2)))
	assert.False(t, Equal(Int(1<<53+1), Int(1<<53)))
	assert.False(t, Equal(Float(1), String("1")))
}

func TestText(t *testing.T) {
	assert.Equal(t, "bar", Text(String("bar")))
	assert.Equal(t, "42", Text(Int(42)))
	assert.Equal(t, "2.5", Text(Float(2.5)))
	assert.Equal(t, "true", Text(Bool(true)))
	assert.Equal(t, "", Text(Null{}))
	assert.Equal(t, "", Text(nil))
	assert.Equal(t, `{"a":1}`, Text(Object{"a": Int(1)}))
	assert.Equal(t, `["x"]`, Text(Array{String("x")}))
}
