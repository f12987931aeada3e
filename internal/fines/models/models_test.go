package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	assert.Equal(t, CategoryStandard, ParseCategory("standard"))
	assert.Equal(t, CategoryCourt, ParseCategory(" Court "))
	assert.Equal(t, CategoryUnknown, ParseCategory("parking"))
	assert.Equal(t, CategoryUnknown, ParseCategory(""))
}

func TestDateOf(t *testing.T) {
	colombo := time.FixedZone("Asia/Colombo", 5*3600+1800)
	// 20:00 UTC on Dec 31 is already Jan 1 in Colombo.
	ts := time.Date(2023, 12, 31, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, Date{2023, time.December, 31}, DateOf(ts))
	assert.Equal(t, Date{2024, time.January, 1}, DateOf(ts.In(colombo)))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", d.String())

	d, err = ParseDate("2024-03-05T10:11:12.000Z")
	require.NoError(t, err)
	assert.Equal(t, Date{2024, time.March, 5}, d)

	_, err = ParseDate("01/02/2024")
	assert.Error(t, err)
}

func TestDateJSON(t *testing.T) {
	var rec struct {
		IssueDate Date `json:"issueDate"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"issueDate":"2024-01-01"}`), &rec))
	assert.Equal(t, Date{2024, time.January, 1}, rec.IssueDate)

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"issueDate":"2024-01-01"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"issueDate":"yesterday"}`), &rec))
}

func TestPaymentLedger(t *testing.T) {
	ledger := PaymentLedger{"f1": true}
	assert.True(t, ledger.Paid("f1"))
	assert.False(t, ledger.Paid("f2"))
	assert.False(t, PaymentLedger(nil).Paid("f1"))
}
