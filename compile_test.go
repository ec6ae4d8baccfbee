package doctransform

import "testing"

func TestCompileDirect(t *testing.T) {
	walk, transform, err := CompileMapping(DirectMapping{From: "nested.key1", To: "unnested_key1"}, nil)
	if err != nil {
		t.Fatalf("CompileMapping() error = %v", err)
	}
	if !pathsEqual(walk, Path{ObjectSegment("nested")}) {
		t.Fatalf("walk path = %v; want [nested]", walk)
	}
	if transform.Source.Kind != SrcDirect || transform.Source.ID != "key1" {
		t.Fatalf("source = %+v; want Direct(key1)", transform.Source)
	}
	if transform.Dest.Kind != DstDirect || transform.Dest.ID != "unnested_key1" {
		t.Fatalf("dest = %+v; want Direct(unnested_key1)", transform.Dest)
	}
}

func TestCompileDirectRejectsEmptyTo(t *testing.T) {
	if _, _, err := CompileMapping(DirectMapping{From: "a", To: ""}, nil); err == nil {
		t.Fatalf("expected error for empty 'to'")
	}
}

func TestCompileDirectArraySource(t *testing.T) {
	walk, transform, err := CompileMapping(DirectMapping{From: "my_array[0]", To: "used_to_be_array"}, nil)
	if err != nil {
		t.Fatalf("CompileMapping() error = %v", err)
	}
	if len(walk) != 0 {
		t.Fatalf("walk path = %v; want empty (leaf stays on root node)", walk)
	}
	if transform.Source.Kind != SrcDirectArray || transform.Source.ID != "my_array" || transform.Source.Index != 0 {
		t.Fatalf("source = %+v; want DirectArray(my_array, 0)", transform.Source)
	}
}

func TestCompileConstant(t *testing.T) {
	_, transform, err := CompileMapping(ConstantMapping{From: String("consant_value"), To: "const"}, nil)
	if err != nil {
		t.Fatalf("CompileMapping() error = %v", err)
	}
	if transform.Source.Kind != SrcConstant || transform.Source.Constant.StringValue() != "consant_value" {
		t.Fatalf("source = %+v; want Constant(consant_value)", transform.Source)
	}
}

func TestCompileFlattenDefaultToRoot(t *testing.T) {
	_, transform, err := CompileMapping(FlattenMapping{From: "nested", To: "", Separator: "_", Recursive: true}, nil)
	if err != nil {
		t.Fatalf("CompileMapping() error = %v", err)
	}
	if transform.Dest.Kind != DstFlattenDirect || transform.Dest.HasID {
		t.Fatalf("dest = %+v; want FlattenDirect with HasID=false (merge into parent)", transform.Dest)
	}
}

func TestCompileFlattenRejectsManipulationWithoutRegistry(t *testing.T) {
	_, _, err := CompileMapping(FlattenMapping{From: "nested", To: "out", Manipulation: "upper"}, nil)
	if err == nil {
		t.Fatalf("expected error when manipulation is requested with a nil registry")
	}
}

func TestCompileFlattenRejectsUnregisteredManipulation(t *testing.T) {
	registry := NewManipulationRegistry()
	_, _, err := CompileMapping(FlattenMapping{From: "nested", To: "out", Manipulation: "does_not_exist"}, registry)
	if err == nil {
		t.Fatalf("expected error for unregistered manipulation tag")
	}
}

func TestValidatePrefixRejectsArraySegment(t *testing.T) {
	_, _, err := CompileMapping(DirectMapping{From: "a", To: "arr[0].field"}, nil)
	if err == nil {
		t.Fatalf("expected error for destination prefix traversing an array segment")
	}
	if kind := err.(*TransformError).Kind; kind != ErrInvalidNamespace {
		t.Fatalf("error kind = %v; want InvalidNamespace", kind)
	}
}
