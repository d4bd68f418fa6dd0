package vector

import "testing"

func TestIsValid(t *testing.T) {
	for _, f := range All {
		if !f.IsValid() {
			t.Errorf("%q.IsValid() = false, want true", f)
		}
	}

	invalid := []Field{"", "names", "specialty", "UNIFIED", "practice_group"}
	for _, f := range invalid {
		if f.IsValid() {
			t.Errorf("%q.IsValid() = true, want false", f)
		}
	}
}

func TestConstants(t *testing.T) {
	tests := map[Field]string{
		Name:               "name",
		SpecialtySynonym:   "specialty.synonym",
		ClinicalExperience: "clinical.experience",
		PracticeGroup:      "practice.group",
		Unified:            "unified",
	}
	for f, want := range tests {
		if string(f) != want {
			t.Errorf("constant = %q, want %q", f, want)
		}
	}
	if len(All) != 5 {
		t.Errorf("len(All) = %d, want 5", len(All))
	}
}
