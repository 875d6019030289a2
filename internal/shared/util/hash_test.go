package util

import "testing"

func TestOwnerKey(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		same bool
	}{
		{"stable", "guest:abc", "guest:abc", true},
		{"guest and user differ", "guest:abc", "abc", false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			ka, kb := OwnerKey(tt.a), OwnerKey(tt.b)
			if (ka == kb) != tt.same {
				t.Fatalf("OwnerKey(%q)=%s OwnerKey(%q)=%s", tt.a, ka, tt.b, kb)
			}
			if len(ka) != ownerKeyLen {
				t.Fatalf("expected %d characters, got %d", ownerKeyLen, len(ka))
			}
			for _, ch := range ka {
				if !((ch >= 'a' && ch <= 'f') || (ch >= '0' && ch <= '9')) {
					t.Fatalf("key contains non-hex character: %c", ch)
				}
			}
		})
	}
}
