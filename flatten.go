package doctransform

import "strconv"

// flattenInto writes the entries of from into the object into, deriving
// keys from prefix/separator and an optional manipulation. See spec §4.5
// for the full semantics, including the two historical quirks noted in
// spec §9: non-recursive flatten passes composite values through
// unflattened, and array-derived keys use 1-based decimal indices that
// manipulation never touches.
func flattenInto(into *Value, from Value, prefix, separator string, manipulation func(string) string, recursive bool) {
	switch from.Kind() {
	case KindObject:
		for _, k := range from.Keys() {
			v, _ := from.Field(k)
			base := k
			if manipulation != nil {
				base = manipulation(k)
			}
			key := composeKey(prefix, separator, base)
			writeFlattenEntry(into, key, v, separator, manipulation, recursive)
		}
	case KindArray:
		for i, v := range from.Items() {
			key := composeKey(prefix, separator, strconv.Itoa(i+1))
			writeFlattenEntry(into, key, v, separator, manipulation, recursive)
		}
	default:
		into.Set(prefix, from.Clone())
	}
}

func writeFlattenEntry(into *Value, key string, v Value, separator string, manipulation func(string) string, recursive bool) {
	if recursive && (v.Kind() == KindObject || v.Kind() == KindArray) {
		flattenInto(into, v, key, separator, manipulation, recursive)
		return
	}
	into.Set(key, v.Clone())
}

func composeKey(prefix, separator, base string) string {
	if prefix == "" {
		return base
	}
	return prefix + separator + base
}

// flatten is the entry point the evaluator uses: it allocates a fresh
// destination map, fills it via flattenInto, and returns it; the caller
// then stores that map under an id or merges it into its own map.
func flatten(from Value, prefix, separator string, manipulation func(string) string, recursive bool) Value {
	into := NewObject()
	flattenInto(&into, from, prefix, separator, manipulation, recursive)
	return into
}
