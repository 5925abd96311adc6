package qr

import "testing"

const (
	validUUID      = "3f2504e0-4f89-11d3-9a0c-0305e82c3301"
	validUUIDUpper = "3F2504E0-4F89-11D3-9A0C-0305E82C3301"
)

func TestDecode_PrefixStripped(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		id    string
		valid bool
	}{
		{"bare prefix", "guest-" + validUUID, validUUID, true},
		{"prefix stripped once", "guest-guest-" + validUUID, "guest-" + validUUID, false},
		{"prefix with garbage", "guest-not-a-uuid", "not-a-uuid", false},
		{"uppercase uuid", "guest-" + validUUIDUpper, validUUIDUpper, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := Decode(test.raw)
			if got.ID != test.id {
				t.Errorf("Decode(%q).ID = %q, expected %q", test.raw, got.ID, test.id)
			}
			if got.Valid != test.valid {
				t.Errorf("Decode(%q).Valid = %v, expected %v", test.raw, got.Valid, test.valid)
			}
		})
	}
}

func TestDecode_URLExtraction(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		id    string
		valid bool
	}{
		{
			"guestId in query",
			"https://portal.example.com/guest/view?guestId=" + validUUID,
			validUUID,
			true,
		},
		{
			"guestId among other params",
			"https://portal.example.com/scan?event=e1&guestId=" + validUUID + "&src=qr",
			validUUID,
			true,
		},
		{
			"guest path without query falls back to raw",
			"https://portal.example.com/guest/" + validUUID,
			"https://portal.example.com/guest/" + validUUID,
			false,
		},
		{
			"query without guestId falls back to raw",
			"https://portal.example.com/guest/view?other=1",
			"https://portal.example.com/guest/view?other=1",
			false,
		},
		{
			"empty guestId falls back to raw",
			"https://portal.example.com/scan?guestId=",
			"https://portal.example.com/scan?guestId=",
			false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := Decode(test.raw)
			if got.ID != test.id {
				t.Errorf("Decode(%q).ID = %q, expected %q", test.raw, got.ID, test.id)
			}
			if got.Valid != test.valid {
				t.Errorf("Decode(%q).Valid = %v, expected %v", test.raw, got.Valid, test.valid)
			}
		})
	}
}

func TestDecode_Validation(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		valid bool
	}{
		{"bare uuid", validUUID, true},
		{"uppercase uuid", validUUIDUpper, true},
		{"empty input", "", false},
		{"random text", "hello world", false},
		{"uuid without dashes", "3f2504e04f8911d39a0c0305e82c3301", false},
		{"uuid with wrong dash positions", "3f2504e04-f89-11d3-9a0c-0305e82c3301", false},
		{"uuid with non-hex characters", "3f2504e0-4f89-11d3-9a0c-0305e82c330g", false},
		{"uuid with trailing text", validUUID + "x", false},
		{"uuid with surrounding whitespace", " " + validUUID + " ", false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := Decode(test.raw)
			if got.Valid != test.valid {
				t.Errorf("Decode(%q).Valid = %v, expected %v", test.raw, got.Valid, test.valid)
			}
		})
	}
}

func TestDecode_Deterministic(t *testing.T) {
	raw := "guest-" + validUUID
	first := Decode(raw)
	second := Decode(raw)
	if first != second {
		t.Errorf("Decode(%q) not deterministic: %+v vs %+v", raw, first, second)
	}
}
