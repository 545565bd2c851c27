package ownership

import "testing"

func TestIsOwned(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		attrs map[string]string
		want  bool
	}{
		{
			name:  "cloud tag marker",
			attrs: Tags(),
			want:  true,
		},
		{
			name:  "cluster label marker",
			attrs: Labels(),
			want:  true,
		},
		{
			name:  "foreign manager",
			attrs: map[string]string{LabelKey: "helm"},
			want:  false,
		},
		{
			name:  "no marker",
			attrs: map[string]string{"team": "platform"},
			want:  false,
		},
		{
			name:  "nil attrs",
			attrs: nil,
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsOwned(tt.attrs); got != tt.want {
				t.Errorf("IsOwned(%v) = %v, want %v", tt.attrs, got, tt.want)
			}
		})
	}
}

func TestTagsAndLabelsAreIndependentCopies(t *testing.T) {
	t.Parallel()

	tags := Tags()
	tags["extra"] = "x"
	if len(Tags()) != 1 {
		t.Error("mutating a returned tag set must not affect later calls")
	}

	labels := Labels()
	labels["extra"] = "x"
	if len(Labels()) != 1 {
		t.Error("mutating a returned label set must not affect later calls")
	}
}
