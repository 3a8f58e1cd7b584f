// Package validation checks configuration and command input.
//
// Struct tags cover config structs; field names in messages follow the yaml
// key (falling back to json, then snake_case).
//
//	type Config struct {
//	    ReadTimeout time.Duration `yaml:"read_timeout" validate:"gte=0"`
//	}
//	err := validation.Validate(cfg)
//
// The programmatic Validator collects several field errors into one
// AppError:
//
//	v := validation.New()
//	v.Required("url", target).URL("url", target, "http", "https")
//	err := v.Error()
package validation
