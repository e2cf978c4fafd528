package bhavledger

import "testing"

func TestParseRatio(t *testing.T) {
	r, err := ParseRatio("1:10")
	if err != nil {
		t.Fatalf("ParseRatio() error: %v", err)
	}
	if r.A != 1 || r.B != 10 {
		t.Errorf("ParseRatio() = %v want {1 10}", r)
	}

	r, err = ParseRatio(" 1 : 2.5 ")
	if err != nil {
		t.Fatalf("ParseRatio() with spaces: %v", err)
	}
	if r.B != 2.5 {
		t.Errorf("B = %v want 2.5", r.B)
	}
}

func TestParseRatioInvalid(t *testing.T) {
	for _, s := range []string{"", "1", "0:2", "1:0", "-1:2", "a:b", "1:"} {
		if _, err := ParseRatio(s); err == nil {
			t.Errorf("ParseRatio(%q): want error", s)
		}
	}
}

func TestRatioString(t *testing.T) {
	tests := []struct {
		r    Ratio
		want string
	}{
		{Ratio{1, 10}, "1:10"},
		{Ratio{1, 2.5}, "1:2.5"},
		{Ratio{1, 4}, "1:4"},
	}
	for _, tt := range tests {
		if got := tt.r.String(); got != tt.want {
			t.Errorf("Ratio%v.String() = %q want %q", tt.r, got, tt.want)
		}
	}
}

func TestParseActionType(t *testing.T) {
	for _, s := range []string{"SPLIT", "split", " Bonus ", "rights", "DEMERGER"} {
		if _, err := ParseActionType(s); err != nil {
			t.Errorf("ParseActionType(%q) error: %v", s, err)
		}
	}
	if _, err := ParseActionType("dividend"); err == nil {
		t.Error("ParseActionType(\"dividend\"): want error")
	}
}
