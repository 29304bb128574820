package profile

import "fmt"

// ConfigError reports profile data the engine cannot run with. It is always fatal.
type ConfigError struct {
	Key    string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("profile %q: %s", e.Key, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Fatal marks the error as unrecoverable for errors.As probes.
func (e *ConfigError) Fatal() bool { return true }
