package chi

import (
	"strings"
	"testing"
)

func TestRenderMarkdown(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		notWant string
	}{
		{"plain", "Here are the results", "<p>Here are the results</p>", ""},
		{"emphasis", "I recommend **Vampire Nighthawk**", "<strong>Vampire Nighthawk</strong>", ""},
		{"list", "- Sol Ring\n- Black Lotus", "<li>Sol Ring</li>", ""},
		{"raw html dropped", "<script>alert(1)</script>", "", "<script>"},
		{"javascript link dropped", "[x](javascript:alert(1))", "", "javascript:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(renderMarkdown(tt.in))
			if tt.want != "" && !strings.Contains(got, tt.want) {
				t.Errorf("renderMarkdown(%q) = %q, want it to contain %q", tt.in, got, tt.want)
			}
			if tt.notWant != "" && strings.Contains(got, tt.notWant) {
				t.Errorf("renderMarkdown(%q) = %q, must not contain %q", tt.in, got, tt.notWant)
			}
		})
	}
}
