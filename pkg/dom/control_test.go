package dom

import "testing"

func TestParseControlType(t *testing.T) {
	cases := map[string]ControlType{
		"":                TypeText,
		"TEXT":            TypeText,
		" email ":         TypeText,
		"date":            TypeText,
		"textarea":        TypeText,
		"checkbox":        TypeCheckbox,
		"radio":           TypeRadio,
		"select":          TypeSelectOne,
		"select-one":      TypeSelectOne,
		"select-multiple": TypeSelectMultiple,
		"file":            TypeFile,
		"submit":          TypeButton,
		"reset":           TypeButton,
		"week":            TypeUnknown,
		"x-custom":        TypeUnknown,
	}
	for raw, want := range cases {
		if got := ParseControlType(raw); got != want {
			t.Errorf("ParseControlType(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestEventPreventDefault(t *testing.T) {
	ev := NewEvent(EventSubmit, nil)
	if ev.DefaultPrevented() {
		t.Fatalf("fresh event must not be prevented")
	}
	ev.PreventDefault()
	if !ev.DefaultPrevented() {
		t.Fatalf("expected prevented event")
	}
	if ev.TargetName() != "" {
		t.Fatalf("form-level event has no target name")
	}

	var nilEvent *Event
	nilEvent.PreventDefault()
	if nilEvent.DefaultPrevented() {
		t.Fatalf("nil event reports prevented")
	}
}
