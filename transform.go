package doctransform

// Transformer is the immutable, frozen {arena, mode} pair produced by
// Builder.Build. It is read-only and safely shareable across goroutines
// that each transform their own document: evaluation never mutates the
// arena and produces an independent output Value per call.
type Transformer struct {
	arena *Arena
	mode  Mode
}

// Mode reports the transformer's top-level array policy.
func (t *Transformer) Mode() Mode { return t.mode }

// ApplyValue walks src once against the compiled rule tree and returns
// the transformed output. In Many2Many mode, a top-level Array input is
// mapped element-by-element (spec's I-many2many); otherwise src is
// evaluated once as a single document.
func (t *Transformer) ApplyValue(src Value) (Value, error) {
	if t.mode == Many2Many && src.Kind() == KindArray {
		out := Value{kind: KindArray}
		for _, item := range src.Items() {
			elemOut := NewObject()
			if err := t.evalNode(0, item, &elemOut); err != nil {
				return Value{}, err
			}
			out.Append(elemOut)
		}
		return out, nil
	}

	out := NewObject()
	if err := t.evalNode(0, src, &out); err != nil {
		return Value{}, err
	}
	return out, nil
}

// ApplyJSON decodes data as JSON, transforms it, and re-encodes the
// result as JSON.
func (t *Transformer) ApplyJSON(data []byte) ([]byte, error) {
	var src Value
	if err := src.UnmarshalJSON(data); err != nil {
		return nil, newError(ErrJSON, err, "decoding input document")
	}
	out, err := t.ApplyValue(src)
	if err != nil {
		return nil, err
	}
	b, err := out.MarshalJSON()
	if err != nil {
		return nil, newError(ErrJSON, err, "encoding output document")
	}
	return b, nil
}

// ApplyYAML decodes data as YAML, transforms it, and re-encodes the
// result as YAML, reusing the same gopkg.in/yaml.v3 library the teacher
// uses for its own marshal/unmarshal pair.
func (t *Transformer) ApplyYAML(data []byte) ([]byte, error) {
	var src Value
	if err := yamlUnmarshal(data, &src); err != nil {
		return nil, newError(ErrIO, err, "decoding input document")
	}
	out, err := t.ApplyValue(src)
	if err != nil {
		return nil, err
	}
	b, err := yamlMarshal(out)
	if err != nil {
		return nil, newError(ErrIO, err, "encoding output document")
	}
	return b, nil
}

// evalNode recursively evaluates arena node idx against the current
// sub-value v, writing into the shared output document out. See spec
// §4.6: rules at this node fire first (in insertion order), then
// children are visited in index order; a missing sub-value skips the
// child subtree entirely rather than writing Null.
func (t *Transformer) evalNode(idx int, v Value, out *Value) error {
	for _, rule := range t.arena.rulesAt(idx) {
		if err := applyTransform(rule, v, out); err != nil {
			return err
		}
	}

	for _, childIdx := range t.arena.children(idx) {
		kind, id, index := t.arena.nodeInfo(childIdx)
		switch kind {
		case SegObject:
			if v.Kind() != KindObject {
				continue
			}
			childVal, ok := v.Field(id)
			if !ok {
				continue
			}
			if err := t.evalNode(childIdx, childVal, out); err != nil {
				return err
			}
		case SegArray:
			var elem Value
			var ok bool
			if id != "" {
				if v.Kind() == KindObject {
					if arr, aok := v.Field(id); aok && arr.Kind() == KindArray {
						elem, ok = arr.Index(index)
					}
				}
			} else if v.Kind() == KindArray {
				elem, ok = v.Index(index)
			}
			if !ok {
				continue
			}
			if err := t.evalNode(childIdx, elem, out); err != nil {
				return err
			}
		}
	}
	return nil
}

// applyTransform evaluates one compiled rule: read the source value out
// of from, then write it at the rule's destination inside out.
func applyTransform(t *Transform, from Value, out *Value) error {
	field := evalSource(t.Source, from)
	return writeDest(t.Dest, field, out)
}

func evalSource(src Source, from Value) Value {
	switch src.Kind {
	case SrcDirect:
		if from.Kind() == KindObject {
			if v, ok := from.Field(src.ID); ok {
				return v
			}
		}
		return Null()
	case SrcDirectArray:
		if from.Kind() == KindObject {
			if arr, ok := from.Field(src.ID); ok && arr.Kind() == KindArray {
				if v, ok := arr.Index(src.Index); ok {
					return v
				}
			}
			return Null()
		}
		if from.Kind() == KindArray {
			if v, ok := from.Index(src.Index); ok {
				return v
			}
		}
		return Null()
	case SrcConstant:
		return src.Constant
	default:
		return Null()
	}
}

// writeDest materializes dst's prefix-path inside out, then performs
// the leaf write per spec §4.4. Direct/DirectArray clone field before
// writing so the output never aliases the input's underlying
// arrays/maps — without this, a later rule writing deeper into the
// same destination would mutate the caller's input document in place.
// Flatten destinations don't need this: flatten() already clones every
// leaf it writes, so a second clone here would just double the copy.
func writeDest(dst Dest, field Value, out *Value) error {
	lastMap := materializePrefix(out, dst.Prefix)

	switch dst.Kind {
	case DstDirect:
		lastMap.Set(dst.ID, field.Clone())
	case DstDirectArray:
		writeArraySlot(lastMap, dst.ID, dst.Index, field.Clone())
	case DstFlattenDirect:
		temp := flatten(field, dst.FlattenPrefix, dst.FlattenSeparator, dst.Manipulation, dst.Recursive)
		if dst.HasID {
			lastMap.Set(dst.ID, temp)
		} else {
			mergeFields(lastMap, temp)
		}
	case DstFlattenArray:
		temp := flatten(field, dst.FlattenPrefix, dst.FlattenSeparator, dst.Manipulation, dst.Recursive)
		writeArraySlot(lastMap, dst.ID, dst.Index, temp)
	}
	return nil
}

// materializePrefix walks prefix from out, creating (or reusing) an
// Object-kind child at each step, and returns a pointer to the final
// map. Every segment is guaranteed Object-kind by validatePrefix at
// compile time.
func materializePrefix(out *Value, prefix Path) *Value {
	cur := out
	for _, seg := range prefix {
		cur = cur.objectChild(seg.ID)
	}
	return cur
}

// mergeFields copies src's entries into dst in src's key order,
// last-writer-wins on collision (spec §4.5).
func mergeFields(dst *Value, src Value) {
	for _, k := range src.Keys() {
		v, _ := src.Field(k)
		dst.Set(k, v)
	}
}

// writeArraySlot implements the DirectArray/FlattenArray growth rule:
// grow an existing array to length >= index+1 with Null fill, or create
// a fresh array of index Nulls followed by field; a non-array existing
// value at id is left untouched.
func writeArraySlot(lastMap *Value, id string, index int, field Value) {
	existing, ok := lastMap.Field(id)
	if !ok {
		fresh := Value{kind: KindArray}
		fresh.GrowArray(index)
		fresh.Append(field)
		lastMap.Set(id, fresh)
		return
	}
	if existing.Kind() != KindArray {
		return
	}
	existing.SetIndex(index, field)
	lastMap.Set(id, existing)
}
