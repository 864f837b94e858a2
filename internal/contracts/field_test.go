package contracts

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fieldPayload struct {
	Price  Field[float64] `json:"price,omitempty"`
	Margin Field[float64] `json:"margin,omitempty"`
	Title  Field[string]  `json:"title,omitempty"`
	BSR    Field[int]     `json:"bsr,omitempty"`
}

func TestFieldAbsentIsUnset(t *testing.T) {
	var p fieldPayload
	require.NoError(t, json.Unmarshal([]byte(`{}`), &p))

	assert.True(t, p.Price.IsUnset())
	assert.True(t, p.Title.IsUnset())
}

func TestFieldNullIsClear(t *testing.T) {
	var p fieldPayload
	require.NoError(t, json.Unmarshal([]byte(`{"price": null}`), &p))

	assert.True(t, p.Price.IsClear())
	assert.True(t, p.Margin.IsUnset())
}

func TestFieldValueIsSet(t *testing.T) {
	var p fieldPayload
	require.NoError(t, json.Unmarshal([]byte(`{"price": 39.99, "title": "Cutting Board"}`), &p))

	v, ok := p.Price.Value()
	require.True(t, ok)
	assert.Equal(t, 39.99, v)

	title, ok := p.Title.Value()
	require.True(t, ok)
	assert.Equal(t, "Cutting Board", title)
}

func TestFieldNumericStringCoercion(t *testing.T) {
	var p fieldPayload
	require.NoError(t, json.Unmarshal([]byte(`{"price": "42.5", "bsr": "1200"}`), &p))

	v, ok := p.Price.Value()
	require.True(t, ok)
	assert.Equal(t, 42.5, v)

	bsr, ok := p.BSR.Value()
	require.True(t, ok)
	assert.Equal(t, 1200, bsr)
}

func TestFieldNonNumericStringIsUnsetNotZero(t *testing.T) {
	var p fieldPayload
	require.NoError(t, json.Unmarshal([]byte(`{"price": "n/a", "margin": ""}`), &p))

	// Garbage numeric input must never clobber the base with zero
	assert.True(t, p.Price.IsUnset())
	assert.True(t, p.Margin.IsUnset())
}

func TestFieldResolve(t *testing.T) {
	assert.Equal(t, 10.0, Set(10.0).Resolve(5.0))
	assert.Equal(t, 0.0, Clear[float64]().Resolve(5.0))

	var unset Field[float64]
	assert.Equal(t, 5.0, unset.Resolve(5.0))
}

func TestFieldMarshalRoundTrip(t *testing.T) {
	p := fieldPayload{Price: Set(19.99), Margin: Clear[float64]()}

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "19.99", string(decoded["price"]))
	assert.Equal(t, "null", string(decoded["margin"]))
}

func TestOverrideIsEmpty(t *testing.T) {
	o := &ProductOverride{UserID: "u1", ProductID: "p1", Reason: "check"}
	assert.True(t, o.IsEmpty())

	o.Margin = Set(0.4)
	assert.False(t, o.IsEmpty())
}
