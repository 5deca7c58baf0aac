package sqlitekit

import "strings"

// SchemaObjectType enumerates the `type` column of sqlite_master.
type SchemaObjectType string

const (
	ObjectTable   SchemaObjectType = "table"
	ObjectView    SchemaObjectType = "view"
	ObjectIndex   SchemaObjectType = "index"
	ObjectTrigger SchemaObjectType = "trigger"
)

// SchemaObject is one row of sqlite_master/sqlite_temp_master.
type SchemaObject struct {
	Type    SchemaObjectType
	Name    string
	TblName string
	SQL     string // empty for internal/automatic objects
}

// SchemaInfo is the full set of objects in one schema, as of the last
// refresh. Name lookups are case-insensitive but the canonical (as-stored)
// casing is always what's returned.
type SchemaInfo struct {
	objects    []SchemaObject
	byLowerName map[string]int // index into objects, keyed by strings.ToLower(Name)
}

func newSchemaInfo(objects []SchemaObject) *SchemaInfo {
	si := &SchemaInfo{objects: objects, byLowerName: make(map[string]int, len(objects))}
	for i, o := range objects {
		si.byLowerName[strings.ToLower(o.Name)] = i
	}
	return si
}

// Canonical returns the stored-case name matching name case-insensitively,
// and whether it was found.
func (si *SchemaInfo) Canonical(name string) (string, bool) {
	if si == nil {
		return "", false
	}
	i, ok := si.byLowerName[strings.ToLower(name)]
	if !ok {
		return "", false
	}
	return si.objects[i].Name, true
}

// Contains reports whether name (case-insensitive) names an object of the
// given type, or any type if typ == "".
func (si *SchemaInfo) Contains(name string, typ SchemaObjectType) bool {
	if si == nil {
		return false
	}
	i, ok := si.byLowerName[strings.ToLower(name)]
	if !ok {
		return false
	}
	return typ == "" || si.objects[i].Type == typ
}

// Objects returns every object of the given type, or all objects if
// typ == "".
func (si *SchemaInfo) Objects(typ SchemaObjectType) []SchemaObject {
	if si == nil {
		return nil
	}
	if typ == "" {
		return si.objects
	}
	out := make([]SchemaObject, 0, len(si.objects))
	for _, o := range si.objects {
		if o.Type == typ {
			out = append(out, o)
		}
	}
	return out
}
