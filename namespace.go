package doctransform

import (
	"strconv"
	"strings"
)

// SegmentKind distinguishes an object-field step from an array-index step.
type SegmentKind int

const (
	SegObject SegmentKind = iota
	SegArray
)

// Segment is one positional step of a Path: either Object{ID} or
// Array{ID, Index}. An Array segment with an empty ID denotes "the
// current value must itself be an array; index into it."
type Segment struct {
	Kind  SegmentKind
	ID    string
	Index int
}

func ObjectSegment(id string) Segment { return Segment{Kind: SegObject, ID: id} }

func ArraySegment(id string, index int) Segment {
	return Segment{Kind: SegArray, ID: id, Index: index}
}

// Equal reports whether two segments address the same step (same kind
// and id, and for Array also the same index) — the comparison Invariant
// I3 uses to decide whether an arena insertion reuses an existing child.
func (s Segment) Equal(o Segment) bool {
	if s.Kind != o.Kind || s.ID != o.ID {
		return false
	}
	if s.Kind == SegArray {
		return s.Index == o.Index
	}
	return true
}

func (s Segment) String() string {
	if s.Kind == SegArray {
		return s.ID + "[" + strconv.Itoa(s.Index) + "]"
	}
	return s.ID
}

// Path is an ordered sequence of segments addressing a location in a Value.
type Path []Segment

func (p Path) String() string {
	var sb strings.Builder
	for i, seg := range p {
		if i > 0 && seg.Kind != SegArray {
			sb.WriteByte('.')
		} else if i > 0 && seg.Kind == SegArray && seg.ID != "" {
			sb.WriteByte('.')
		} else if i > 0 && seg.Kind == SegArray && p[i-1].Kind != SegArray {
			sb.WriteByte('.')
		}
		sb.WriteString(seg.String())
	}
	return sb.String()
}

// Parse converts a dotted/bracketed namespace string such as "a.b[3].c"
// into its segment sequence. Empty input yields a single Object("")
// segment. See spec §4.1 for the full grammar.
func Parse(s string) (Path, error) {
	if s == "" {
		return Path{ObjectSegment("")}, nil
	}

	var path Path
	for _, piece := range strings.Split(s, ".") {
		segs, err := parsePiece(piece)
		if err != nil {
			return nil, err
		}
		path = append(path, segs...)
	}
	return path, nil
}

// MustParse parses s and panics on error. Intended for trusted literal
// call sites (tests, constant fixtures) — never used by the compiler.
func MustParse(s string) Path {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// parsePiece handles one dot-delimited piece, which may carry zero or
// more trailing "[idx]" groups, e.g. "array[0][1]".
func parsePiece(piece string) ([]Segment, error) {
	bracket := strings.IndexByte(piece, '[')
	if bracket < 0 {
		return []Segment{ObjectSegment(piece)}, nil
	}

	id := piece[:bracket]
	rest := piece[bracket:]

	var segs []Segment
	first := true
	for len(rest) > 0 {
		if rest[0] != '[' {
			break
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return nil, newError(ErrInvalidNamespaceArrayIndex, nil, "unterminated '[' in namespace piece %q", piece)
		}
		idxText := rest[1:end]
		idx, err := strconv.Atoi(idxText)
		if err != nil || idx < 0 {
			return nil, newError(ErrInvalidNamespaceArrayIndex, err, "invalid array index %q in namespace piece %q", idxText, piece)
		}

		if first {
			segs = append(segs, ArraySegment(id, idx))
			first = false
		} else {
			segs = append(segs, ArraySegment("", idx))
		}
		rest = rest[end+1:]
	}
	return segs, nil
}
