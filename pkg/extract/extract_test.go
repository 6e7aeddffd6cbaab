package extract

import (
	"math"
	"sort"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/dom"
	"github.com/goliatone/go-formstate/pkg/dom/memdom"
	"github.com/goliatone/go-formstate/pkg/state"
)

func TestExtract_SkipsNamelessAndButtons(t *testing.T) {
	form := memdom.NewForm(
		memdom.Input("", "text", memdom.WithValue("x"), memdom.WithRequired()),
		memdom.Button("go", "submit"),
		memdom.Input("title", "text", memdom.WithValue("hello")),
	)
	snap := Extract(form, nil, ModeNormal)

	want := map[string]state.Value{"title": state.String("hello")}
	if diff := cmp.Diff(want, snap.Values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if len(snap.NativeErrors) != 0 {
		t.Fatalf("expected no errors, got %v", snap.NativeErrors)
	}
}

func TestExtract_LoneCheckbox(t *testing.T) {
	box := memdom.Input("agree", "checkbox")
	form := memdom.NewForm(box)

	if got := Extract(form, nil, ModeNormal).Values["agree"]; !got.Equal(state.Bool(false)) {
		t.Fatalf("unchecked lone checkbox = %v, want false", got)
	}
	form.Click(box)
	if got := Extract(form, nil, ModeNormal).Values["agree"]; !got.Equal(state.Bool(true)) {
		t.Fatalf("checked lone checkbox = %v, want true", got)
	}

	named := memdom.Checkbox("plan", "pro", memdom.WithChecked(true))
	if got := Extract(memdom.NewForm(named), nil, ModeNormal).Values["plan"]; !got.Equal(state.String("pro")) {
		t.Fatalf("checked checkbox with value = %v, want \"pro\"", got)
	}

	indeterminate := memdom.Input("maybe", "checkbox", memdom.WithIndeterminate())
	if got := Extract(memdom.NewForm(indeterminate), nil, ModeNormal).Values["maybe"]; !got.IsUndefined() {
		t.Fatalf("indeterminate checkbox = %v, want undefined", got)
	}
}

func TestExtract_CheckboxGroupCollectsEveryCheckedValue(t *testing.T) {
	var boxes []*memdom.Element
	for _, v := range []string{"A", "B", "C", "D"} {
		boxes = append(boxes, memdom.Checkbox("topping", v))
	}
	form := memdom.NewForm(boxes...)
	for _, box := range boxes {
		form.Click(box)
	}

	got := Extract(form, nil, ModeNormal).Values["topping"]
	if got.Kind() != state.KindList {
		t.Fatalf("expected a list, got %v", got)
	}
	items := got.List()
	sort.Strings(items)
	if diff := cmp.Diff([]string{"A", "B", "C", "D"}, items); diff != "" {
		t.Fatalf("group mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_Radio(t *testing.T) {
	s := memdom.Radio("size", "s")
	m := memdom.Radio("size", "m")
	form := memdom.NewForm(s, m)

	if _, ok := Extract(form, nil, ModeNormal).Values["size"]; ok {
		t.Fatalf("unchecked radio group must yield no entry")
	}
	form.Click(s)
	if got := Extract(form, nil, ModeNormal).Values["size"]; !got.Equal(state.String("s")) {
		t.Fatalf("radio = %v, want \"s\"", got)
	}

	odd := memdom.NewForm(
		memdom.Radio("mood", "a", memdom.WithIndeterminate()),
		memdom.Radio("mood", "b"),
	)
	got, ok := Extract(odd, nil, ModeNormal).Values["mood"]
	if !ok || !got.IsUndefined() {
		t.Fatalf("indeterminate radio group = %v (present %v), want explicit undefined", got, ok)
	}
}

func TestExtract_SelectsAndFiles(t *testing.T) {
	multi := memdom.Select("langs", true, []memdom.SelectOption{
		{Value: "go", Selected: true},
		{Value: "rust"},
		{Value: "zig", Selected: true},
	})
	file := memdom.Input("cv", "file", memdom.WithFiles(dom.FileRef{Name: "cv.pdf", Size: 10}))
	form := memdom.NewForm(multi, file)

	snap := Extract(form, nil, ModeNormal)
	if got := snap.Values["langs"]; !got.Equal(state.List("go", "zig")) {
		t.Fatalf("multi-select = %v", got)
	}
	wantFile := state.File(`C:\fakepath\cv.pdf`, []dom.FileRef{{Name: "cv.pdf", Size: 10}})
	if got := snap.Values["cv"]; !got.Equal(wantFile) {
		t.Fatalf("file = %v", got)
	}
}

func TestExtract_Coercion(t *testing.T) {
	cases := []struct {
		name string
		el   *memdom.Element
		want state.Value
	}{
		{
			name: "bool false",
			el:   memdom.Input("f", "text", memdom.WithValue("false"), memdom.WithAttr(dom.AttrValueAsBool, "")),
			want: state.Bool(false),
		},
		{
			name: "bool false1",
			el:   memdom.Input("f", "text", memdom.WithValue("false1"), memdom.WithAttr(dom.AttrValueAsBool, "")),
			want: state.Bool(true),
		},
		{
			name: "bool trimmed",
			el:   memdom.Input("f", "text", memdom.WithValue("  null "), memdom.WithAttr(dom.AttrValueAsBool, "")),
			want: state.Bool(false),
		},
		{
			name: "bool case sensitive",
			el:   memdom.Input("f", "text", memdom.WithValue("FALSE"), memdom.WithAttr(dom.AttrValueAsBool, "")),
			want: state.Bool(true),
		},
		{
			name: "date",
			el:   memdom.Input("f", "date", memdom.WithValue("1991-12-12"), memdom.WithAttr(dom.AttrValueAsDate, "")),
			want: state.Date(time.Date(1991, 12, 12, 0, 0, 0, 0, time.UTC)),
		},
		{
			name: "date fallback parse",
			el:   memdom.Input("f", "text", memdom.WithValue("1991-12-12"), memdom.WithAttr(dom.AttrValueAsDate, "")),
			want: state.Date(time.Date(1991, 12, 12, 0, 0, 0, 0, time.UTC)),
		},
		{
			name: "number",
			el:   memdom.Input("f", "number", memdom.WithValue("42.5"), memdom.WithAttr(dom.AttrValueAsNumber, "")),
			want: state.Number(42.5),
		},
		{
			name: "number wins over date",
			el: memdom.Input("f", "date", memdom.WithValue("1970-01-02"),
				memdom.WithAttr(dom.AttrValueAsDate, ""),
				memdom.WithAttr(dom.AttrValueAsNumber, ""),
			),
			want: state.Number(86400000),
		},
		{
			name: "number on text is NaN",
			el:   memdom.Input("f", "text", memdom.WithValue("12"), memdom.WithAttr(dom.AttrValueAsNumber, "")),
			want: state.Number(math.NaN()),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Extract(memdom.NewForm(tc.el), nil, ModeNormal).Values["f"]
			if !got.Equal(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestExtract_NativeErrorsAndOverride(t *testing.T) {
	email := memdom.Input("email", "email", memdom.WithValue("nope"), memdom.WithAttr(dom.AttrErrorMessage, "Bad email"))
	name := memdom.Input("name", "text", memdom.WithRequired())
	form := memdom.NewForm(name, email)

	snap := Extract(form, nil, ModeNormal)
	want := map[string]string{
		"name":  "Please fill out this field.",
		"email": "Bad email",
	}
	if diff := cmp.Diff(want, snap.NativeErrors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if email.CustomValidity() != "" {
		t.Fatalf("override must not be pushed without native display")
	}

	Extract(form, nil, ModeNormal, WithOverridePush(true))
	if email.CustomValidity() != "Bad email" {
		t.Fatalf("expected override pushed, got %q", email.CustomValidity())
	}

	field, ok := snap.Field("name")
	if !ok || field.ErrorControl != dom.Control(name) {
		t.Fatalf("expected name's error control to be recorded")
	}
}

func TestExtract_ClearsCustomValidityFirst(t *testing.T) {
	el := memdom.Input("code", "text", memdom.WithValue("ok"))
	el.SetCustomValidity("stale")
	snap := Extract(memdom.NewForm(el), nil, ModeNormal)
	if _, ok := snap.NativeErrors["code"]; ok {
		t.Fatalf("stale custom validity leaked into errors")
	}
}

func TestExtract_FieldsInReverseDocumentOrder(t *testing.T) {
	form := memdom.NewForm(
		memdom.Input("a", "text"),
		memdom.Checkbox("b", "1"),
		memdom.Input("c", "text"),
		memdom.Checkbox("b", "2"),
	)
	snap := Extract(form, nil, ModeNormal)

	var names []string
	for _, f := range snap.Fields {
		names = append(names, f.Name)
	}
	if diff := cmp.Diff([]string{"c", "b", "a"}, names); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}
	b, _ := snap.Field("b")
	if len(b.Controls) != 2 {
		t.Fatalf("expected both b controls, got %d", len(b.Controls))
	}
	if v := b.Controls[0].Value(); v != "1" {
		t.Fatalf("controls must be in document order, first is %q", v)
	}
}

func TestExtract_Idempotent(t *testing.T) {
	form := memdom.NewForm(
		memdom.Input("name", "text", memdom.WithRequired()),
		memdom.Checkbox("t", "a", memdom.WithChecked(true)),
		memdom.Checkbox("t", "b", memdom.WithChecked(true)),
	)
	first := Extract(form, nil, ModeNormal)
	second := Extract(form, nil, ModeNormal)
	if !state.ValuesEqual(first.Values, second.Values) {
		t.Fatalf("values changed between passes: %v vs %v", first.Values, second.Values)
	}
	if diff := cmp.Diff(first.NativeErrors, second.NativeErrors); diff != "" {
		t.Fatalf("errors changed between passes:\n%s", diff)
	}
}

func TestExtract_ResettingRestoresAndDropsNewControls(t *testing.T) {
	name := memdom.Input("name", "text")
	form := memdom.NewForm(name)
	baseline := map[string]state.Value{"name": state.String("mounted")}

	form.Append(memdom.Input("late", "text", memdom.WithValue("x")))

	snap := Extract(form, baseline, ModeResetting)
	if _, ok := snap.Values["late"]; ok {
		t.Fatalf("control added after mount leaked into reset snapshot")
	}
	if _, ok := snap.Field("late"); !ok {
		t.Fatalf("late control should still be listed as a field")
	}
	if got := snap.Values["name"]; !got.Equal(state.String("mounted")) {
		t.Fatalf("baseline not restored, got %v", got)
	}
	if name.DefaultValue() != "mounted" {
		t.Fatalf("default value not restored, got %q", name.DefaultValue())
	}
}

func TestExtract_ResettingKeepsMountedNamesWithoutValues(t *testing.T) {
	form := memdom.NewForm(
		memdom.Radio("plan", "free", memdom.WithRequired()),
		memdom.Radio("plan", "pro", memdom.WithRequired()),
		memdom.Input("late", "text", memdom.WithRequired()),
	)
	mount := Extract(form, nil, ModeNormal)
	if _, ok := mount.Values["plan"]; ok {
		t.Fatalf("unchecked radio group must have no value")
	}

	// "late" stands for a control appended after mount: in neither set.
	baseline := map[string]state.Value{}
	mounted := map[string]bool{"plan": true}
	snap := Extract(form, baseline, ModeResetting, WithMountedNames(mounted))
	want := map[string]string{
		"plan": "Please select one of these options.",
		"late": "Please fill out this field.",
	}
	if diff := cmp.Diff(want, snap.NativeErrors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if _, ok := snap.Values["late"]; ok {
		t.Fatalf("unmounted name must lose its value")
	}
	if diff := cmp.Diff(map[string]bool{"plan": true, "late": true}, snap.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_CheckboxGroupWithoutValues(t *testing.T) {
	cases := []struct {
		name  string
		boxes []*memdom.Element
		want  state.Value
	}{
		{
			name: "checked last in document",
			boxes: []*memdom.Element{
				memdom.Input("opt", "checkbox"),
				memdom.Input("opt", "checkbox", memdom.WithChecked(true)),
			},
			want: state.List("on"),
		},
		{
			name: "checked first in document",
			boxes: []*memdom.Element{
				memdom.Input("opt", "checkbox", memdom.WithChecked(true)),
				memdom.Input("opt", "checkbox"),
			},
			want: state.Bool(true),
		},
		{
			name: "none checked",
			boxes: []*memdom.Element{
				memdom.Input("opt", "checkbox"),
				memdom.Input("opt", "checkbox"),
			},
			want: state.Bool(false),
		},
		{
			name: "both checked",
			boxes: []*memdom.Element{
				memdom.Input("opt", "checkbox", memdom.WithChecked(true)),
				memdom.Input("opt", "checkbox", memdom.WithChecked(true)),
			},
			want: state.List("on", "on"),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Extract(memdom.NewForm(tc.boxes...), nil, ModeNormal).Values["opt"]
			if !got.Equal(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			if got.Kind() == state.KindList {
				for _, item := range got.List() {
					if item == "false" {
						t.Fatalf("unchecked box leaked into the group: %v", got)
					}
				}
			}
		})
	}
}

func TestAsBool(t *testing.T) {
	for raw, want := range map[string]bool{
		"false": false, "": false, "0": false, "undefined": false, "null": false,
		"true": true, "no": true, "false1": true,
	} {
		if got := AsBool(raw).Bool(); got != want {
			t.Errorf("AsBool(%q) = %v, want %v", raw, got, want)
		}
	}
}
