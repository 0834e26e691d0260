// Package sourceenv loads entries from the process environment.
//
// Entry names keep their case. With a prefix, only matching variables are
// loaded and the prefix is stripped: APP_PORT → PORT.
//
// Example:
//
//	source := sourceenv.New(sourceenv.Options{Prefix: "APP_"})
//	loader := envschema.NewLoader(schema).WithSource(source)
package sourceenv
