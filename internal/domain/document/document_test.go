package document

import "testing"

func TestNumeric(t *testing.T) {
	d := Reconstruct("p1", map[string]string{
		"sales":  "99",
		"rating": " 4.5 ",
		"brand":  "acme",
		"empty":  "",
		"nan":    "NaN",
	})

	tests := []struct {
		field  string
		want   float64
		wantOK bool
	}{
		{"sales", 99, true},
		{"rating", 4.5, true},
		{"brand", 0, false},
		{"empty", 0, false},
		{"missing", 0, false},
		{"nan", 0, false},
	}
	for _, tc := range tests {
		got, ok := d.Numeric(tc.field)
		if ok != tc.wantOK || got != tc.want {
			t.Errorf("Numeric(%q) = %v, %v; want %v, %v", tc.field, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestField(t *testing.T) {
	d := Reconstruct("p1", map[string]string{"brand": "acme"})
	if d.ID() != "p1" {
		t.Errorf("ID() = %q", d.ID())
	}
	if v, ok := d.Field("brand"); !ok || v != "acme" {
		t.Errorf("Field(brand) = %q, %v", v, ok)
	}
	if _, ok := d.Field("color"); ok {
		t.Error("expected color to be absent")
	}
}
