package place

import "testing"

func TestLookup(t *testing.T) {
	names := []string{"Chennai", "Chandigarh", "Delhi", "Kolkata", "Mumbai"}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"exact ignores case", "delhi", []string{"Delhi"}},
		{"typo", "Mumbay", []string{"Mumbai"}},
		{"prefix", "Chan", []string{"Chandigarh"}},
		{"too far", "Tokyo", nil},
		{"blank", "  ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Lookup(names, tt.query, 3)
			if len(got) != len(tt.want) {
				t.Fatalf("Lookup(%q) = %v, want %v", tt.query, got, tt.want)
			}
			for i := range tt.want {
				if got[i].Name != tt.want[i] {
					t.Errorf("Lookup(%q)[%d] = %q, want %q", tt.query, i, got[i].Name, tt.want[i])
				}
			}
		})
	}
}
