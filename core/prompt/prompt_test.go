package prompt

import (
	"regexp"
	"strings"
	"testing"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", "General"},
		{"   ", "General"},
		{"photo", "Photo"},
		{"  social_media  ", "Social media"},
		{"ux_ui_design", "Ux ui design"},
		{"Developer", "Developer"},
		{"éditorial", "Éditorial"},
		{"_private", "_private"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := DisplayName(tt.raw); got != tt.want {
				t.Errorf("DisplayName(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestBuild_Deterministic(t *testing.T) {
	first := Build("Photography")
	second := Build("Photography")
	if first != second {
		t.Fatal("Build must be byte-identical for the same label")
	}
}

func TestBuild_EmbedsLabelTwice(t *testing.T) {
	const label = "Zymurgy Consulting"
	instruction := Build(label)

	if got := strings.Count(instruction, label); got != 2 {
		t.Errorf("label occurs %d times, want 2", got)
	}
	if !strings.Contains(instruction, `"Zymurgy Consulting" mindset`) {
		t.Error("expected the label as domain context")
	}
	if !strings.Contains(instruction, "terminology appropriate for Zymurgy Consulting.") {
		t.Error("expected the label as terminology register")
	}
}

func TestBuild_DiffersOnlyInLabel(t *testing.T) {
	a := Build("Qqqq Alpha")
	b := Build("Wwww Beta")

	if strings.ReplaceAll(a, "Qqqq Alpha", "Wwww Beta") != b {
		t.Error("instructions must differ only in the embedded label")
	}
}

func TestBuild_BlankLabel(t *testing.T) {
	if Build("  ") != Build(DefaultLabel) {
		t.Error("blank label must collapse to the default label")
	}
}

func TestBuild_LabelIsNotAFormatString(t *testing.T) {
	instruction := Build("100% %s Growth")
	if strings.Count(instruction, "100% %s Growth") != 2 {
		t.Errorf("label must be embedded verbatim:\n%s", instruction)
	}
}

func TestBuild_OutputContract(t *testing.T) {
	instruction := Build("Marketing")

	for _, section := range []string{"Role", "Context", "Task"} {
		if !strings.Contains(instruction, section) {
			t.Errorf("missing %s section requirement", section)
		}
	}
	if !regexp.MustCompile(`"\*\*Quality Score: XX/100\*\*" where XX is 75-98`).MatchString(instruction) {
		t.Error("missing quality score instruction")
	}
}

func TestCompile(t *testing.T) {
	if Compile("social_media") != Build("Social media") {
		t.Error("Compile must format the mindset before building")
	}
	if Compile("") != Build("General") {
		t.Error("Compile of empty mindset must use General")
	}
}
