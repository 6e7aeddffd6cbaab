package state

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestValueTruthy(t *testing.T) {
	cases := []struct {
		name  string
		value Value
		want  bool
	}{
		{"undefined", Undefined(), false},
		{"empty string", String(""), false},
		{"string", String("x"), true},
		{"false", Bool(false), false},
		{"zero", Number(0), false},
		{"nan", Number(math.NaN()), false},
		{"number", Number(2), true},
		{"empty list", List(), true},
		{"date", Date(time.Unix(0, 0)), true},
	}
	for _, tc := range cases {
		if got := tc.value.Truthy(); got != tc.want {
			t.Errorf("%s: Truthy() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestValueEqual(t *testing.T) {
	if !Number(math.NaN()).Equal(Number(math.NaN())) {
		t.Fatalf("NaN must equal NaN so untouched numeric fields stay clean")
	}
	utc := time.Date(1991, 12, 12, 0, 0, 0, 0, time.UTC)
	if !Date(utc).Equal(Date(utc.In(time.FixedZone("x", 3600)))) {
		t.Fatalf("dates compare by instant")
	}
	if String("1").Equal(Number(1)) {
		t.Fatalf("different kinds are never equal")
	}
	if !List("a", "b").Equal(List("a").Append("b")) {
		t.Fatalf("list append mismatch")
	}
}

func TestValuesEqual(t *testing.T) {
	a := map[string]Value{"n": Number(math.NaN()), "s": String("x")}
	b := map[string]Value{"n": Number(math.NaN()), "s": String("x")}
	if !ValuesEqual(a, b) {
		t.Fatalf("expected equal maps")
	}
	b["s"] = String("y")
	if ValuesEqual(a, b) {
		t.Fatalf("expected maps to differ")
	}
	if !ValuesEqual(nil, map[string]Value{}) {
		t.Fatalf("nil and empty maps are equal")
	}
}

func TestFormStateJSON(t *testing.T) {
	st := Default()
	st.Values["age"] = Number(math.NaN())
	st.Values["tags"] = List("a")
	st.Values["gone"] = Undefined()
	st.IsValid = true

	data, err := json.Marshal(st)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := map[string]any{
		"age":  nil,
		"tags": []any{"a"},
		"gone": nil,
	}
	if diff := cmp.Diff(want, got["values"]); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if got["isValid"] != true {
		t.Fatalf("expected isValid true, got %v", got["isValid"])
	}
}

func TestCloneIsIndependent(t *testing.T) {
	st := Default()
	st.Touched["a"] = true
	clone := st.Clone()
	clone.Touched["b"] = true
	if st.Touched["b"] {
		t.Fatalf("clone shares maps with original")
	}
}

func TestPartsString(t *testing.T) {
	if got := PartFull.String(); got != "full" {
		t.Fatalf("got %q", got)
	}
	if got := (PartTouched | PartBlurred).String(); got != "touched|blurred" {
		t.Fatalf("got %q", got)
	}
	u := Update{Parts: PartValidating}
	if !u.Has(PartValidating) || u.Full() {
		t.Fatalf("unexpected Has/Full for %v", u.Parts)
	}
}
