package output

import "testing"

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{7, "7"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-1234, "-1,234"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatCost(t *testing.T) {
	if got := FormatCost(12.345); got != "$12.35" {
		t.Errorf("FormatCost(12.345) = %q", got)
	}
	if got := FormatCost(0); got != "$0.00" {
		t.Errorf("FormatCost(0) = %q", got)
	}
}

func TestShortenSessionID(t *testing.T) {
	if got := shortenSessionID("11111111-aaaa-bbbb-cccc-000000000001"); got != "11111111" {
		t.Errorf("shortenSessionID = %q", got)
	}
	if got := shortenSessionID("short"); got != "short" {
		t.Errorf("shortenSessionID(short) = %q", got)
	}
}

func TestEnvColumns(t *testing.T) {
	t.Setenv("COLUMNS", "132")
	if got := envColumns(); got != 132 {
		t.Errorf("envColumns = %d, want 132", got)
	}

	t.Setenv("COLUMNS", "wide")
	if got := envColumns(); got != 0 {
		t.Errorf("envColumns with junk value = %d, want 0", got)
	}

	t.Setenv("COLUMNS", "")
	if got := envColumns(); got != 0 {
		t.Errorf("envColumns unset = %d, want 0", got)
	}
}

func TestShouldUseCompact(t *testing.T) {
	if !shouldUseCompact(TableOptions{ForceCompact: true}) {
		t.Error("ForceCompact ignored")
	}

	t.Setenv("COLUMNS", "80")
	if !shouldUseCompact(TableOptions{}) {
		t.Error("80 columns should use compact mode")
	}

	t.Setenv("COLUMNS", "200")
	if shouldUseCompact(TableOptions{}) {
		t.Error("200 columns should use full mode")
	}
}
