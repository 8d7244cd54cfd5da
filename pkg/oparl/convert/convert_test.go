package convert

import (
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestDateTimeConversion(t *testing.T) {
	is := is.New(t)

	value, err := Convert("date-time", "2016-04-14T07:30:00+02:00")
	is.NoErr(err)

	ts, ok := value.(time.Time)
	is.True(ok)

	expected, _ := time.Parse(time.RFC3339, "2016-04-14T07:30:00+02:00")
	is.True(ts.Equal(expected))

	// serializing reproduces the original string's instant
	is.Equal(ts.Format(time.RFC3339), "2016-04-14T07:30:00+02:00")
}

func TestDateConversion(t *testing.T) {
	is := is.New(t)

	value, err := Convert("date", "2016-04-14")
	is.NoErr(err)

	ts, ok := value.(time.Time)
	is.True(ok)

	y, m, d := ts.Date()
	is.Equal(y, 2016)
	is.Equal(m, time.April)
	is.Equal(d, 14)
}

func TestTimeConversion(t *testing.T) {
	is := is.New(t)

	value, err := Convert("time", "09:30:00")
	is.NoErr(err)

	ts, ok := value.(time.Time)
	is.True(ok)
	is.Equal(ts.Hour(), 9)
	is.Equal(ts.Minute(), 30)
}

func TestTimeConversionWithOffset(t *testing.T) {
	is := is.New(t)

	value, err := Convert("time", "09:30:00+02:00")
	is.NoErr(err)

	_, ok := value.(time.Time)
	is.True(ok)
}

func TestMalformedDateFails(t *testing.T) {
	is := is.New(t)

	_, err := Convert("date", "not-a-date")
	is.True(err != nil)
}

func TestNonStringValueFails(t *testing.T) {
	is := is.New(t)

	_, err := Convert("date-time", 42.0)
	is.True(err != nil)
}

func TestUnregisteredTypePassesThrough(t *testing.T) {
	is := is.New(t)

	value, err := Convert("string", "hello")
	is.NoErr(err)
	is.Equal(value, "hello")

	is.True(Registered("date"))
	is.True(!Registered("string"))
}
