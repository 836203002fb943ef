package config

import "time"

// Duration wraps time.Duration so it can be decoded from TOML strings and
// set from flag.Value, mirroring the teacher's settings.Duration.
type Duration struct {
	time.Duration
}

func NewDuration(seconds float64) Duration {
	return Duration{time.Duration(seconds * float64(time.Second))}
}

func (d *Duration) String() string {
	return d.Duration.String()
}

func (d *Duration) Set(s string) error {
	v, err := time.ParseDuration(s)
	if err == nil {
		d.Duration = v
	}
	return err
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}
