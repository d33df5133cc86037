package taxonomy

import "testing"

func TestAxesOrderAndShape(t *testing.T) {
	got := Axes()
	if len(got) != 2 {
		t.Fatalf("Axes returned %d axes, want 2", len(got))
	}
	if got[0].Name != AxisLocation || got[1].Name != AxisEra {
		t.Fatalf("axis order mismatch: %s, %s", got[0].Name, got[1].Name)
	}
	for _, axis := range got {
		for i, cat := range axis.Categories {
			if cat.Code != i+1 {
				t.Fatalf("%s code at position %d is %d, want %d", axis.Name, i, cat.Code, i+1)
			}
			if cat.Label == "" {
				t.Fatalf("%s code %d has empty label", axis.Name, cat.Code)
			}
		}
	}
}

func TestValidate(t *testing.T) {
	for code := 1; code <= 4; code++ {
		if !Validate(AxisLocation, code) {
			t.Fatalf("Validate(%s, %d) = false, want true", AxisLocation, code)
		}
		if !Validate(AxisEra, code) {
			t.Fatalf("Validate(%s, %d) = false, want true", AxisEra, code)
		}
	}
	for _, code := range []int{0, 5, -1, 100} {
		if Validate(AxisLocation, code) {
			t.Fatalf("Validate(%s, %d) = true, want false", AxisLocation, code)
		}
	}
	if Validate(AxisName("WeatherCategory"), 1) {
		t.Fatal("Validate accepted an unknown axis")
	}
}

func TestLabel(t *testing.T) {
	label, ok := Label(AxisEra, 1)
	if !ok || label != "traditional" {
		t.Fatalf("Label(Era, 1) = %q, %v", label, ok)
	}
	if _, ok := Label(AxisEra, 9); ok {
		t.Fatal("Label accepted an out-of-range code")
	}
}

func TestDisplayLabel(t *testing.T) {
	if got := DisplayLabel(Category{Code: 1, Label: "indoor"}); got != "Indoor" {
		t.Fatalf("DisplayLabel = %q, want %q", got, "Indoor")
	}
}
