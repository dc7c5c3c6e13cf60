package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeStringFromString(t *testing.T) {
	ts, err := NewTimeStringFromString("09:30")
	require.NoError(t, err)
	assert.Equal(t, "09:30", ts.String())

	_, err = NewTimeStringFromString("25:00")
	assert.ErrorIs(t, err, ErrInvalidTimeString)

	_, err = NewTimeStringFromString("0930")
	assert.ErrorIs(t, err, ErrInvalidTimeString)
}

func TestTimeString_Minutes(t *testing.T) {
	ts := TimeString("07:00")
	m, err := ts.Minutes()
	require.NoError(t, err)
	assert.Equal(t, 7*60, m)

	m, err = TimeString("20:30").Minutes()
	require.NoError(t, err)
	assert.Equal(t, 20*60+30, m)
}

func TestTimeString_AddMinutes(t *testing.T) {
	ts := TimeString("10:00")

	later, err := ts.AddMinutes(50)
	require.NoError(t, err)
	assert.Equal(t, TimeString("10:50"), later)

	// Выход за пределы суток
	_, err = TimeString("23:50").AddMinutes(30)
	assert.Error(t, err)

	_, err = TimeString("00:10").AddMinutes(-30)
	assert.Error(t, err)
}

func TestTimeString_Ordering(t *testing.T) {
	assert.True(t, TimeString("09:00").IsBefore("09:30"))
	assert.True(t, TimeString("10:00").IsAfter("09:30"))
	assert.False(t, TimeString("09:00").IsBefore("09:00"))

	until, err := TimeString("09:00").MinutesUntil("11:30")
	require.NoError(t, err)
	assert.Equal(t, 150, until)
}

func TestTimeString_Scan(t *testing.T) {
	var ts TimeString

	// Postgres TIME приходит с секундами
	require.NoError(t, ts.Scan("14:30:00"))
	assert.Equal(t, TimeString("14:30"), ts)

	require.NoError(t, ts.Scan(time.Date(2026, 1, 1, 8, 15, 0, 0, time.UTC)))
	assert.Equal(t, TimeString("08:15"), ts)

	require.NoError(t, ts.Scan(nil))
	assert.True(t, ts.IsZero())

	assert.Error(t, ts.Scan(42))
}

func TestTimeString_Value(t *testing.T) {
	v, err := TimeString("12:00").Value()
	require.NoError(t, err)
	assert.Equal(t, "12:00", v)

	v, err = TimeString("").Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = TimeString("garbage").Value()
	assert.Error(t, err)
}
