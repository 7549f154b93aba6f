package extract

import "testing"

func TestKeywordExtract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Entities
	}{
		{
			name: "float id only",
			text: "where is float 2902746 right now?",
			want: Entities{FloatID: "2902746"},
		},
		{
			name: "region only",
			text: "show me floats in the Arabian Sea",
			want: Entities{Region: "arabian"},
		},
		{
			name: "parameter only",
			text: "what was the maximum Temperature recorded?",
			want: Entities{Parameter: "temperature"},
		},
		{
			name: "all three",
			text: "salinity profile of 1901349 in the indian ocean",
			want: Entities{FloatID: "1901349", Region: "indian", Parameter: "salinity"},
		},
		{
			name: "six digits is not a float id",
			text: "float 123456 does not exist",
			want: Entities{},
		},
		{
			name: "eight digits is not a float id",
			text: "number 12345678 is too long",
			want: Entities{},
		},
		{
			name: "first float id wins",
			text: "compare 2902746 and 2902747",
			want: Entities{FloatID: "2902746"},
		},
		{
			name: "region list order breaks ties",
			text: "between the atlantic and the pacific",
			want: Entities{Region: "pacific"},
		},
		{
			name: "case insensitive keywords",
			text: "MEDITERRANEAN OXYGEN levels",
			want: Entities{Region: "mediterranean", Parameter: "oxygen"},
		},
		{
			name: "empty text",
			text: "",
			want: Entities{},
		},
	}

	ex := NewKeyword()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ex.Extract(tt.text)
			if got != tt.want {
				t.Errorf("Extract(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}

func TestEntitiesIsEmpty(t *testing.T) {
	if !(Entities{}).IsEmpty() {
		t.Error("IsEmpty() = false for zero value, want true")
	}
	if (Entities{FloatID: "2902746"}).IsEmpty() {
		t.Error("IsEmpty() = true with float ID set, want false")
	}
	if (Entities{Parameter: "ph"}).IsEmpty() {
		t.Error("IsEmpty() = true with parameter set, want false")
	}
}

func TestKeywordExtractParameterOrder(t *testing.T) {
	// "depth" appears before "oxygen" in the keyword list, so it wins
	// even when oxygen comes first in the sentence.
	got := NewKeyword().Extract("oxygen at depth")
	if got.Parameter != "depth" {
		t.Errorf("Extract parameter = %q, want %q (list order wins)", got.Parameter, "depth")
	}
}
