package Finance

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftApply(t *testing.T) {
	var d Draft
	d = d.Apply(FieldMaterialPrice, "100")
	d = d.Apply(FieldTripsCount, "3")
	assert.Equal(t, 300.0, d.TotalOrderValue)

	d = d.Apply(FieldProfit, "50")
	assert.Equal(t, 250.0, d.TotalExpense)
}

func TestDraftApplyLastWriteWins(t *testing.T) {
	d := Draft{}.Apply(FieldMaterialPrice, "100").Apply(FieldTripsCount, "3")

	d = d.Apply(FieldTotalOrderValue, "500")
	assert.Equal(t, 500.0, d.TotalOrderValue)
	assert.Equal(t, 500.0, d.TotalExpense)

	d = d.Apply(FieldTripsCount, "2")
	assert.Equal(t, 200.0, d.TotalOrderValue)
	assert.Equal(t, 200.0, d.TotalExpense)

	d = d.Apply(FieldTotalExpense, "90")
	assert.Equal(t, 90.0, d.TotalExpense)
	assert.Equal(t, 200.0, d.TotalOrderValue)
}

func TestDraftApplyCoercion(t *testing.T) {
	d := Draft{}.Apply(FieldMaterialPrice, "-20")
	assert.Equal(t, 0.0, d.MaterialPrice)

	d = d.Apply(FieldTripsCount, "abc")
	assert.Equal(t, 0.0, d.TripsCount)
	assert.Equal(t, 0.0, d.TotalOrderValue)

	d = d.Apply(FieldProfit, "NaN")
	assert.Equal(t, 0.0, d.Profit)
}

func TestDraftApplyClampsCarriedFields(t *testing.T) {
	d := Draft{MaterialPrice: -5, TripsCount: 2, Profit: -50}.Apply(FieldTotalOrderValue, "300")
	assert.Equal(t, 0.0, d.MaterialPrice)
	assert.Equal(t, 0.0, d.Profit)
	assert.Equal(t, 300.0, d.TotalExpense)
}

func TestNormalize(t *testing.T) {
	d, err := Normalize(Draft{MaterialPrice: 100, TripsCount: 3, Profit: 50, TotalExpense: 999}, false)
	require.NoError(t, err)
	assert.Equal(t, 300.0, d.TotalOrderValue)
	assert.Equal(t, 250.0, d.TotalExpense)

	d, err = Normalize(Draft{MaterialPrice: -20, TripsCount: 3, TotalOrderValue: 700}, true)
	require.NoError(t, err)
	assert.Equal(t, 0.0, d.MaterialPrice)
	assert.Equal(t, 700.0, d.TotalOrderValue)

	_, err = Normalize(Draft{TotalOrderValue: 100, Profit: 150}, true)
	assert.ErrorIs(t, err, ErrProfitExceedsOrder)
}

func TestAmountUnmarshal(t *testing.T) {
	var body struct {
		A Amount  `json:"a"`
		B Amount  `json:"b"`
		C Amount  `json:"c"`
		D *Amount `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 12.5, "b": "40", "c": "abc", "d": null}`), &body))
	assert.Equal(t, 12.5, body.A.Float())
	assert.Equal(t, 40.0, body.B.Float())
	assert.Equal(t, 0.0, body.C.Float())
	assert.Nil(t, body.D)
}

func TestSum(t *testing.T) {
	assert.Equal(t, 0.3, Sum(0.1, 0.2))
	assert.Equal(t, 6.0, Sum(1, 2, 3))
	assert.Equal(t, 0.0, Sum[float64]())
}
