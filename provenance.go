package envschema

// Provenance records which source supplied each observed entry.
type Provenance struct {
	Entries []EntryProvenance
}

// EntryProvenance describes where an entry's value came from.
type EntryProvenance struct {
	Key        string   // Entry name (e.g., "DATABASE_URL")
	SourceName string   // Winning source (e.g., "file:.env.local")
	Shadowed   []string // Earlier sources whose value was overridden, in load order
}

// SourceOf returns the name of the source that supplied key.
func (p Provenance) SourceOf(key string) (string, bool) {
	for _, e := range p.Entries {
		if e.Key == key {
			return e.SourceName, true
		}
	}
	return "", false
}
