package estate

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampMarshalsCanonical(t *testing.T) {
	ts := NewTimestamp(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	data, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2025-03-01T00:00:00.000Z"`, string(data))

	var zero Timestamp
	data, err = json.Marshal(zero)
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestTimestampAcceptsBackendVariants(t *testing.T) {
	want := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{
		`"2024-12-31"`,
		`"2024-12-31T00:00:00"`,
		`"2024-12-31T00:00:00Z"`,
		`"2024-12-31T00:00:00.000Z"`,
		`"2024-12-31T05:30:00+05:30"`,
	} {
		var ts Timestamp
		require.NoError(t, json.Unmarshal([]byte(in), &ts), in)
		assert.True(t, ts.Equal(want), "%s parsed as %s", in, ts)
	}

	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte(`null`), &ts))
	assert.True(t, ts.IsZero())
	assert.Error(t, json.Unmarshal([]byte(`"next tuesday"`), &ts))
	assert.Error(t, json.Unmarshal([]byte(`12`), &ts))
}

func TestOptionalFieldsSerializeAsNull(t *testing.T) {
	data, err := json.Marshal(Property{AddressLine1: "1 Galle Rd", RentAmount: 1000})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	for _, k := range []string{"sizeSqFt", "bedrooms", "bathrooms", "ownerId"} {
		v, ok := m[k]
		assert.True(t, ok, k)
		assert.Nil(t, v, k)
	}
	assert.Equal(t, float64(0), m["propertyId"])
}

func TestLeaseValidateRequiresEndAfterStart(t *testing.T) {
	start := NewTimestamp(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	same := Lease{StartDate: start, EndDate: start, MonthlyRent: 10}
	assert.ErrorIs(t, same.Validate(), ErrInvalid)

	before := Lease{StartDate: start, EndDate: NewTimestamp(start.AddDate(0, 0, -1)), MonthlyRent: 10}
	assert.ErrorIs(t, before.Validate(), ErrInvalid)

	ok := Lease{StartDate: start, EndDate: NewTimestamp(start.AddDate(1, 0, 0)), MonthlyRent: 10}
	assert.NoError(t, ok.Validate())
}

func TestNegativeNumbersRejected(t *testing.T) {
	neg := -1
	negF := -2.5
	assert.ErrorIs(t, Property{Bedrooms: &neg}.Validate(), ErrInvalid)
	assert.ErrorIs(t, Property{SizeSqFt: &negF}.Validate(), ErrInvalid)
	assert.ErrorIs(t, Property{RentAmount: -1}.Validate(), ErrInvalid)
	assert.ErrorIs(t, Lease{SecurityDeposit: &negF}.Validate(), ErrInvalid)
	assert.ErrorIs(t, Payment{Amount: -3}.Validate(), ErrInvalid)
	assert.ErrorIs(t, Owner{OwnerID: -1}.Validate(), ErrInvalid)
	assert.NoError(t, Tenant{TenantID: 4}.Validate())
}

func TestParseResource(t *testing.T) {
	r, ok := ParseResource("maintenance")
	require.True(t, ok)
	assert.Equal(t, "/maintenance", r.Path())
	assert.Equal(t, "Maintenance Request", r.Singular())

	_, ok = ParseResource("requests")
	assert.False(t, ok)
}
