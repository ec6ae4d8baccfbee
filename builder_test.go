package doctransform

import "testing"

func TestBuilderFailsFastAndStaysDefunct(t *testing.T) {
	b := NewBuilder(One2One)
	if err := b.AddDirect("a", ""); err == nil {
		t.Fatalf("expected error for empty 'to'")
	}

	// A subsequent, otherwise-valid Add still reports the first error.
	if err := b.AddDirect("b", "c"); err == nil {
		t.Fatalf("expected defunct builder to keep reporting its error")
	}

	if _, err := b.Build(); err == nil {
		t.Fatalf("expected Build() to fail on a defunct builder")
	}
}

func TestBuilderBuildsWithNoMappings(t *testing.T) {
	b := NewBuilder(One2One)
	tr, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	out, err := tr.ApplyValue(decodeJSON(t, `{"a":"b"}`))
	if err != nil {
		t.Fatalf("ApplyValue() error = %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("ApplyValue() = %v; want an empty object", out)
	}
}

func TestBuilderRegistryAcceptsCustomManipulation(t *testing.T) {
	b := NewBuilder(One2One)
	b.Registry().Register("shout", func(s string) string { return s + "!" })

	if err := b.AddFlatten(FlattenMapping{From: "nested", To: "out", Manipulation: "shout", Recursive: false}); err != nil {
		t.Fatalf("AddFlatten() error = %v", err)
	}
	tr, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	src := NewObject()
	inner := NewObject()
	inner.Set("key", String("value"))
	src.Set("nested", inner)

	out, err := tr.ApplyValue(src)
	if err != nil {
		t.Fatalf("ApplyValue() error = %v", err)
	}
	got, ok := out.Field("out")
	if !ok {
		t.Fatalf("Field(out) missing")
	}
	v, ok := got.Field("key!")
	if !ok || v.StringValue() != "value" {
		t.Fatalf("Field(key!) = %v, %v; want value, true", v, ok)
	}
}

func TestBuilderModePropagates(t *testing.T) {
	b := NewBuilder(Many2Many)
	if err := b.AddDirect("a", "b"); err != nil {
		t.Fatalf("AddDirect() error = %v", err)
	}
	tr, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if tr.Mode() != Many2Many {
		t.Fatalf("Mode() = %v; want Many2Many", tr.Mode())
	}
}
