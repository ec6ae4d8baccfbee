package doctransform

// SourceKind distinguishes how a rule reads its input sub-value.
type SourceKind int

const (
	SrcDirect SourceKind = iota
	SrcDirectArray
	SrcConstant
)

// Source is the compiled, bottom-level descriptor of where a rule reads
// its value from, applied against the evaluator's current sub-value.
type Source struct {
	Kind     SourceKind
	ID       string
	Index    int
	Constant Value
}

// DestKind distinguishes the four destination shapes spec §3 defines.
type DestKind int

const (
	DstDirect DestKind = iota
	DstDirectArray
	DstFlattenDirect
	DstFlattenArray
)

// Dest is the compiled destination descriptor: where, and how, a rule
// writes into the output tree.
type Dest struct {
	Kind   DestKind
	Prefix Path // prefix-path that must be materialized before the leaf
	ID     string
	HasID  bool // for FlattenDirect: false means "merge into parent map"
	Index  int

	FlattenPrefix    string
	FlattenSeparator string
	Manipulation     func(string) string
	Recursive        bool
}

// Transform pairs a compiled Source with its compiled Dest. It is what
// the rule compiler attaches to an arena node.
type Transform struct {
	Source Source
	Dest   Dest
}

// CompileMapping parses a Mapping into the path the arena should walk
// on the input (the "source-walk-path") and the Transform to attach at
// the resulting node. See spec §4.2.
func CompileMapping(m Mapping, registry *ManipulationRegistry) (Path, *Transform, error) {
	switch t := m.(type) {
	case DirectMapping:
		return compileDirect(t)
	case ConstantMapping:
		return compileConstant(t)
	case FlattenMapping:
		return compileFlatten(t, registry)
	default:
		return nil, nil, newError(ErrInvalidNamespace, nil, "unknown mapping type %T", m)
	}
}

func compileDirect(m DirectMapping) (Path, *Transform, error) {
	fromPath, err := Parse(m.From)
	if err != nil {
		return nil, nil, err
	}
	walk, leaf := popLeaf(fromPath)

	if m.To == "" {
		return nil, nil, newError(ErrInvalidNamespace, nil, "Direct mapping requires a non-empty 'to'")
	}
	toPath, err := Parse(m.To)
	if err != nil {
		return nil, nil, err
	}
	prefix, dstLeaf := popLeaf(toPath)

	src := sourceFromLeaf(leaf)
	dst, err := directDestFromLeaf(prefix, dstLeaf)
	if err != nil {
		return nil, nil, err
	}
	return walk, &Transform{Source: src, Dest: dst}, nil
}

func compileConstant(m ConstantMapping) (Path, *Transform, error) {
	if m.To == "" {
		return nil, nil, newError(ErrInvalidNamespace, nil, "Constant mapping requires a non-empty 'to'")
	}
	toPath, err := Parse(m.To)
	if err != nil {
		return nil, nil, err
	}
	prefix, dstLeaf := popLeaf(toPath)

	dst, err := directDestFromLeaf(prefix, dstLeaf)
	if err != nil {
		return nil, nil, err
	}
	src := Source{Kind: SrcConstant, Constant: m.From}
	return Path{}, &Transform{Source: src, Dest: dst}, nil
}

func compileFlatten(m FlattenMapping, registry *ManipulationRegistry) (Path, *Transform, error) {
	fromPath, err := Parse(m.From)
	if err != nil {
		return nil, nil, err
	}
	walk, leaf := popLeaf(fromPath)

	var toPath Path
	if m.To != "" {
		toPath, err = Parse(m.To)
		if err != nil {
			return nil, nil, err
		}
	}

	var prefix Path
	var dstLeaf Segment
	if len(toPath) == 0 {
		dstLeaf = ObjectSegment("")
	} else {
		prefix, dstLeaf = popLeaf(toPath)
	}
	if err := validatePrefix(prefix); err != nil {
		return nil, nil, err
	}

	var manip func(string) string
	if m.Manipulation != "" {
		if registry == nil {
			return nil, nil, newError(ErrInvalidNamespace, nil, "manipulation %q requested but no registry supplied", m.Manipulation)
		}
		fn, ok := registry.Lookup(m.Manipulation)
		if !ok {
			return nil, nil, newError(ErrInvalidNamespace, nil, "unregistered manipulation %q", m.Manipulation)
		}
		manip = fn
	}

	src := sourceFromLeaf(leaf)

	var dst Dest
	dst.Prefix = prefix
	dst.FlattenPrefix = m.Prefix
	dst.FlattenSeparator = m.Separator
	dst.Manipulation = manip
	dst.Recursive = m.Recursive

	switch dstLeaf.Kind {
	case SegObject:
		dst.Kind = DstFlattenDirect
		if dstLeaf.ID != "" {
			dst.HasID = true
			dst.ID = dstLeaf.ID
		}
	case SegArray:
		dst.Kind = DstFlattenArray
		dst.ID = dstLeaf.ID
		dst.Index = dstLeaf.Index
	}

	return walk, &Transform{Source: src, Dest: dst}, nil
}

// popLeaf splits path into its walk-prefix and trailing leaf segment.
// An empty path yields a zero Segment (object, empty id) as the leaf.
func popLeaf(path Path) (Path, Segment) {
	if len(path) == 0 {
		return nil, ObjectSegment("")
	}
	return path[:len(path)-1], path[len(path)-1]
}

func sourceFromLeaf(leaf Segment) Source {
	if leaf.Kind == SegArray {
		return Source{Kind: SrcDirectArray, ID: leaf.ID, Index: leaf.Index}
	}
	return Source{Kind: SrcDirect, ID: leaf.ID}
}

func directDestFromLeaf(prefix Path, leaf Segment) (Dest, error) {
	if err := validatePrefix(prefix); err != nil {
		return Dest{}, err
	}
	if leaf.Kind == SegArray {
		return Dest{Kind: DstDirectArray, Prefix: prefix, ID: leaf.ID, Index: leaf.Index}, nil
	}
	return Dest{Kind: DstDirect, Prefix: prefix, ID: leaf.ID}, nil
}

// validatePrefix rejects destination prefix-paths that traverse an
// array segment. spec §9 open question #1 notes the historical
// implementation descended into such a segment "as if it were an
// object", which is internally inconsistent; this module resolves that
// open question by rejecting the mapping at compile time instead of
// replicating the inconsistency or special-casing it at eval time.
func validatePrefix(prefix Path) error {
	for _, seg := range prefix {
		if seg.Kind == SegArray {
			return newError(ErrInvalidNamespace, nil, "destination prefix path may not traverse an array segment (%q)", seg.String())
		}
	}
	return nil
}
