package human

import (
	"encoding"
	"flag"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// Duration is similar to time.Duration but supports larger units like days
// and weeks, and accepts units spelled out in full:
//
//	1w
//	2 days
//	1h30m
//	500 ms
//	...
type Duration time.Duration

const (
	Nanosecond  = Duration(time.Nanosecond)
	Microsecond = Duration(time.Microsecond)
	Millisecond = Duration(time.Millisecond)
	Second      = Duration(time.Second)
	Minute      = Duration(time.Minute)
	Hour        = Duration(time.Hour)
	Day         = 24 * Hour
	Week        = 7 * Day
)

var durationUnits = [...]struct {
	scale Duration
	names []string
}{
	{Week, []string{"w", "week", "weeks"}},
	{Day, []string{"d", "day", "days"}},
	{Hour, []string{"h", "hour", "hours"}},
	{Minute, []string{"m", "min", "minute", "minutes"}},
	{Second, []string{"s", "sec", "second", "seconds"}},
	{Millisecond, []string{"ms", "millisecond", "milliseconds"}},
	{Microsecond, []string{"us", "µs", "microsecond", "microseconds"}},
	{Nanosecond, []string{"ns", "nanosecond", "nanoseconds"}},
}

func durationScale(unit string) (Duration, bool) {
	for _, u := range durationUnits {
		for _, name := range u.names {
			if strings.EqualFold(unit, name) {
				return u.scale, true
			}
		}
	}
	return 0, false
}

func ParseDuration(s string) (Duration, error) {
	input := s
	s = strings.TrimSpace(s)
	if s == "0" {
		return 0, nil
	}
	if s == "" {
		return 0, fmt.Errorf("malformed duration: %q", input)
	}

	var d float64
	for s != "" {
		number, rest := nextNumber(s)
		if number == "" {
			return 0, fmt.Errorf("malformed duration: %q", input)
		}
		unit, rest := nextToken(strings.TrimLeft(rest, " "))
		scale, ok := durationScale(unit)
		if !ok {
			return 0, fmt.Errorf("malformed duration: %q: unknown unit %q", input, unit)
		}
		f, err := strconv.ParseFloat(number, 64)
		if err != nil {
			return 0, fmt.Errorf("malformed duration: %q: %w", input, err)
		}
		d += f * float64(scale)
		s = rest
	}

	if d > math.MaxInt64 {
		return 0, fmt.Errorf("duration out of range: %q", input)
	}
	return Duration(d), nil
}

func (d Duration) String() string {
	switch {
	case d == 0:
		return "0s"
	case d%Day == 0 && d >= Day:
		return strconv.FormatInt(int64(d/Day), 10) + "d"
	default:
		return time.Duration(d).String()
	}
}

func (d *Duration) Set(s string) error {
	p, err := ParseDuration(s)
	if err != nil {
		return err
	}
	*d = p
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

func (d *Duration) UnmarshalYAML(y *yaml.Node) error {
	return d.Set(y.Value)
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	return d.Set(string(b))
}

var (
	_ fmt.Stringer = Duration(0)

	_ yaml.Marshaler   = Duration(0)
	_ yaml.Unmarshaler = (*Duration)(nil)

	_ encoding.TextMarshaler   = Duration(0)
	_ encoding.TextUnmarshaler = (*Duration)(nil)

	_ flag.Value = (*Duration)(nil)
)
