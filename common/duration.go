package common

import (
	"fmt"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration accepts "1.5s"-style strings or a bare number of milliseconds.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("cannot unmarshal duration value")
	}
	if duration, err := time.ParseDuration(value.Value); err == nil {
		*d = Duration(duration)
		return nil
	}
	if ms, err := strconv.ParseFloat(value.Value, 64); err == nil {
		*d = Duration(time.Duration(ms * float64(time.Millisecond)))
		return nil
	}
	return fmt.Errorf("invalid interval/duration format: %q", value.Value)
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d Duration) Ptr() *Duration {
	return &d
}

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(time.Duration(d).String())), nil
}

// WithDefault returns the duration value if it's positive, otherwise returns the default value.
func (d Duration) WithDefault(defaultVal time.Duration) time.Duration {
	if d > 0 {
		return time.Duration(d)
	}
	return defaultVal
}
