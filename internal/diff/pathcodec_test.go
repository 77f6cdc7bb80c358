package diff

import "testing"

func TestDecodePath(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   string
		wantOK bool
	}{
		{"plain path", "a/src/main.go", "a/src/main.go", true},
		{"dev null", "/dev/null", "", false},
		{"trailing tab metadata stripped", "a/file.go\t(mode 100644)", "a/file.go", true},
		{"quoted with octal space", `"a/test\040file.py"`, "a/test file.py", true},
		{"quoted with escaped quote", `"a/say\"hi\".txt"`, `a/say"hi".txt`, true},
		{"quoted with tab escape", `"a/col\tname.csv"`, "a/col\tname.csv", true},
		{"quoted with backslash", `"a/back\\slash"`, `a/back\slash`, true},
		{"utf8 from octal bytes", `"a/caf\303\251.txt"`, "a/café.txt", true},
		{"single octal digit", `"a/x\7y"`, "a/x\ay", true},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DecodePath(tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("DecodePath(%q) ok = %v, want %v", tt.raw, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("DecodePath(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestStripDiffPrefix(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"a/src/main.go", "src/main.go"},
		{"b/src/main.go", "src/main.go"},
		{"c/src/main.go", "src/main.go"},
		{"i/src/main.go", "src/main.go"},
		{"w/src/main.go", "src/main.go"},
		// Anchored match only: a literal "b/" later in the path is not a
		// prefix and must never be split on.
		{"dir b/sub/file", "dir b/sub/file"},
		{"no-prefix.go", "no-prefix.go"},
	}

	for _, tt := range tests {
		if got := StripDiffPrefix(tt.raw); got != tt.want {
			t.Errorf("StripDiffPrefix(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
