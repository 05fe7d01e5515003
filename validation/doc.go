// Package validation validates configuration and queries.
//
// It supports struct tag validation (using the validator library) for
// configuration structs and programmatic validation with error collection for
// values assembled at runtime. Both report an errors.AppError whose details
// list every failing field.
//
// # Struct Tag Validation
//
//	type InputConfig struct {
//	    Format string `mapstructure:"format" validate:"oneof=json jsonl yaml csv"`
//	}
//	err := validation.Validate(cfg)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Required("mode", q.Mode).OneOf("mode", q.Mode, modes)
//	if appErr := v.Validate(); appErr != nil { ... }
package validation
