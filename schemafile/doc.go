// Package schemafile loads a schema from a JSON, YAML or TOML file.
//
// The format is inferred from the extension (.json, .yaml/.yml, .toml) and
// defaults to JSON.
//
// Example:
//
//	schema := schemafile.New("env.schema.json", schemafile.Options{})
//	loader := envschema.NewLoader(schema).WithSource(sourcefile.New(".env", sourcefile.Options{}))
package schemafile
