package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCentsString(t *testing.T) {
	assert.Equal(t, "0.00", Cents(0).String())
	assert.Equal(t, "12.50", Cents(1250).String())
	assert.Equal(t, "0.05", Cents(5).String())
	assert.Equal(t, "-3.40", Cents(-340).String())
}

func TestCentsJSON(t *testing.T) {
	data, err := json.Marshal(Cents(149990))
	require.NoError(t, err)
	assert.Equal(t, `"1499.90"`, string(data))

	var c Cents
	require.NoError(t, json.Unmarshal([]byte(`"12.50"`), &c))
	assert.Equal(t, Cents(1250), c)

	require.NoError(t, json.Unmarshal([]byte(`"7"`), &c))
	assert.Equal(t, Cents(700), c)

	require.NoError(t, json.Unmarshal([]byte(`1250`), &c))
	assert.Equal(t, Cents(1250), c)
}

func TestCentsUnmarshalShortFraction(t *testing.T) {
	var c Cents
	require.NoError(t, json.Unmarshal([]byte(`"12.5"`), &c))
	assert.Equal(t, Cents(1250), c)

	require.NoError(t, json.Unmarshal([]byte(`"-0.05"`), &c))
	assert.Equal(t, Cents(-5), c)

	require.NoError(t, json.Unmarshal([]byte(`"-0.5"`), &c))
	assert.Equal(t, Cents(-50), c)
}

func TestCentsUnmarshalRejectsMalformed(t *testing.T) {
	for _, in := range []string{`"12.345"`, `"12."`, `".50"`, `"12.5a"`, `"abc"`, `""`} {
		var c Cents
		assert.Error(t, json.Unmarshal([]byte(in), &c), "input %s", in)
	}
}

func TestValidPaymentMethod(t *testing.T) {
	for _, m := range PaymentMethods {
		assert.True(t, ValidPaymentMethod(m))
	}
	assert.False(t, ValidPaymentMethod("Barter"))
	assert.False(t, ValidPaymentMethod(""))
}
