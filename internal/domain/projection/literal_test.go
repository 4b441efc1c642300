package projection

import "testing"

func TestLiteral(t *testing.T) {
	tests := []struct {
		token  string
		want   string
		wantOK bool
	}{
		{"'archive'", "archive", true},
		{`"archive"`, "archive", true},
		{"'a'", "a", true},
		{"''", "", false},
		{`""`, "", false},
		{"'", "", false},
		{"", "", false},
		{"'mixed\"", "", false},
		{"plain", "", false},
		{"'unterminated", "", false},
		{"`tick`", "", false},
		{"'it''s'", "it''s", true},
	}
	for _, tc := range tests {
		got, ok := Literal(tc.token)
		if ok != tc.wantOK || got != tc.want {
			t.Errorf("Literal(%q) = (%q, %v), want (%q, %v)", tc.token, got, ok, tc.want, tc.wantOK)
		}
	}
}
