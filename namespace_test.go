package doctransform

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Path
		wantErr bool
	}{
		{
			name:  "empty",
			input: "",
			want:  Path{ObjectSegment("")},
		},
		{
			name:  "single field",
			input: "existing_key",
			want:  Path{ObjectSegment("existing_key")},
		},
		{
			name:  "dotted path",
			input: "nested.key1",
			want:  Path{ObjectSegment("nested"), ObjectSegment("key1")},
		},
		{
			name:  "array index",
			input: "my_array[0]",
			want:  Path{ArraySegment("my_array", 0)},
		},
		{
			name:  "chained array indices",
			input: "array[0][1]",
			want:  Path{ArraySegment("array", 0), ArraySegment("", 1)},
		},
		{
			name:  "top-level array",
			input: "[0]",
			want:  Path{ArraySegment("", 0)},
		},
		{
			name:  "nested path through array",
			input: "nested.arr[0].nested.key3",
			want: Path{
				ObjectSegment("nested"),
				ArraySegment("arr", 0),
				ObjectSegment("nested"),
				ObjectSegment("key3"),
			},
		},
		{
			name:    "unterminated bracket",
			input:   "arr[0",
			wantErr: true,
		},
		{
			name:    "non-integer index",
			input:   "arr[x]",
			wantErr: true,
		},
		{
			name:    "negative index",
			input:   "arr[-1]",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !pathsEqual(got, tt.want) {
				t.Fatalf("Parse(%q) = %v; want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestMustParsePanicsOnError(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("MustParse did not panic on invalid input")
		}
	}()
	MustParse("arr[x]")
}

func pathsEqual(a, b Path) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
