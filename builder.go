package doctransform

// Builder accumulates Mappings into a compiled rule tree and freezes
// into an immutable Transformer. It is grounded on the teacher's own
// incremental-construction style (NewNode/AddChild followed by a
// final, read-only traversal) but fails fast: once a mapping fails to
// compile, the Builder is defunct and every further call returns the
// same error without touching the arena.
type Builder struct {
	arena    *Arena
	mode     Mode
	registry *ManipulationRegistry
	err      error
}

// NewBuilder returns an empty Builder for the given top-level array
// policy, pre-seeded with the built-in manipulation registry.
func NewBuilder(mode Mode) *Builder {
	return &Builder{
		arena:    NewArena(),
		mode:     mode,
		registry: NewManipulationRegistry(),
	}
}

// Registry exposes the builder's manipulation registry so callers can
// register additional named manipulations before adding Flatten rules
// that reference them.
func (b *Builder) Registry() *ManipulationRegistry { return b.registry }

// Add compiles m and attaches it to the rule tree. Once the builder has
// failed, Add is a no-op that reports the original error.
func (b *Builder) Add(m Mapping) error {
	if b.err != nil {
		return b.err
	}
	walk, transform, err := CompileMapping(m, b.registry)
	if err != nil {
		b.err = err
		return err
	}
	b.arena.Add(walk, transform)
	return nil
}

// AddDirect is a convenience wrapper for Add(DirectMapping{...}).
func (b *Builder) AddDirect(from, to string) error {
	return b.Add(DirectMapping{From: from, To: to})
}

// AddConstant is a convenience wrapper for Add(ConstantMapping{...}).
func (b *Builder) AddConstant(value Value, to string) error {
	return b.Add(ConstantMapping{From: value, To: to})
}

// AddFlatten is a convenience wrapper for Add(FlattenMapping{...}).
func (b *Builder) AddFlatten(m FlattenMapping) error {
	return b.Add(m)
}

// Build freezes the builder into a Transformer. It fails only if a
// prior Add call failed; a builder with no mappings added yet is
// valid and simply produces an empty object per input.
func (b *Builder) Build() (*Transformer, error) {
	if b.err != nil {
		return nil, b.err
	}
	return &Transformer{arena: b.arena, mode: b.mode}, nil
}
