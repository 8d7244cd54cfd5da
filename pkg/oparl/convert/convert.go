package convert

import (
	"fmt"
	"time"
)

// Wire formats for the OParl temporal types. date-time values use RFC 3339.
const (
	DateLayout       string = "2006-01-02"
	TimeLayout       string = "15:04:05"
	TimeOffsetLayout string = "15:04:05Z07:00"
)

type ConverterFunc func(raw any) (any, error)

var registry = map[string]ConverterFunc{
	"date":      parseDate,
	"date-time": parseDateTime,
	"time":      parseTime,
}

//Registered reports whether a converter exists for the named OParl type
func Registered(typeName string) bool {
	_, ok := registry[typeName]
	return ok
}

//Convert parses raw into the native value for the named OParl type.
//Unregistered type names pass the value through unchanged.
func Convert(typeName string, raw any) (any, error) {
	fn, ok := registry[typeName]
	if !ok {
		return raw, nil
	}
	return fn(raw)
}

func expectString(raw any) (string, error) {
	str, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("expected a string, got %T", raw)
	}
	return str, nil
}

func parseDate(raw any) (any, error) {
	str, err := expectString(raw)
	if err != nil {
		return nil, err
	}

	t, err := time.Parse(DateLayout, str)
	if err != nil {
		return nil, fmt.Errorf("%q is not a valid date: %w", str, err)
	}

	return t, nil
}

func parseDateTime(raw any) (any, error) {
	str, err := expectString(raw)
	if err != nil {
		return nil, err
	}

	t, err := time.Parse(time.RFC3339, str)
	if err != nil {
		return nil, fmt.Errorf("%q is not a valid date-time: %w", str, err)
	}

	return t, nil
}

func parseTime(raw any) (any, error) {
	str, err := expectString(raw)
	if err != nil {
		return nil, err
	}

	// servers publish times both with and without a zone offset
	t, err := time.Parse(TimeOffsetLayout, str)
	if err != nil {
		t, err = time.Parse(TimeLayout, str)
	}
	if err != nil {
		return nil, fmt.Errorf("%q is not a valid time: %w", str, err)
	}

	return t, nil
}
