// Package sourcefile loads entries from dotenv files (KEY=value lines).
//
// Comments, blank lines, "export" prefixes and quoted values follow the usual
// dotenv conventions. Malformed lines are load errors.
//
// Example:
//
//	source := sourcefile.New(".env", sourcefile.Options{Required: true})
//	loader := envschema.NewLoader(schema).WithSource(source)
package sourcefile
