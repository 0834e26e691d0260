// Package envschema validates environment entries against a declarative schema.
//
// A Schema maps entry names to typed fields (string, number, boolean, enum).
// Validate checks a set of entries against it and returns every violation
// at once; it never stops at the first failure and never returns an error
// for invalid input.
//
// Quick Start:
//
//	schema := envschema.Schema{
//	    "PORT":     envschema.NumberField{Required: true},
//	    "NODE_ENV": envschema.EnumField{Values: []string{"development", "production"}},
//	    "EMAIL":    envschema.StringField{Pattern: envschema.Some(`^[^@\s]+@[^@\s]+$`)},
//	}
//
//	result := envschema.Validate(entries, schema, true)
//	if !result.Valid() {
//	    fmt.Println(result.Err())
//	}
//
// To read the schema and entries from files, use a Loader:
//
//	loader := envschema.NewLoader(schemafile.New("env.schema.json", schemafile.Options{})).
//	    WithSource(sourcefile.New(".env", sourcefile.Options{})).
//	    WithSource(sourceenv.New(sourceenv.Options{Prefix: "APP_"})).
//	    Strict(true)
//
//	rep, err := loader.Load(context.Background())
//
// Sources are merged in order, later sources overriding earlier ones, and the
// winning source of every entry is recorded in Report.Provenance.
//
// See example_test.go and the cmd/envschema command for detailed usage.
package envschema
