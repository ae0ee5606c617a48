package calibration

import "testing"

func TestApply(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"known alias", "Pak Hendra", "Hendra Gunawan"},
		{"title suffix", "Sri Wahyuni, S.Pd.", "Sri Wahyuni"},
		{"extra whitespace", "  bu   ratna ", "Ratna Kusumawati"},
		{"mixed case", "ST. AMINAH", "Siti Aminah"},
		{"unknown name unchanged", "Budi Santoso", "Budi Santoso"},
		{"empty unchanged", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Apply(tt.input); got != tt.want {
				t.Errorf("Apply(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestApplyIsTotal(t *testing.T) {
	// Apply must never panic or drop a name, whatever comes in.
	for _, input := range []string{"", " ", "\t\n", "名前", "a b c d e f"} {
		if got := Apply(input); got != input {
			t.Errorf("Apply(%q) changed an unmapped name to %q", input, got)
		}
	}
}
