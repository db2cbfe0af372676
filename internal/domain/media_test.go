package domain

import "testing"

func TestParseCategory(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected Category
		wantErr  bool
	}{
		{name: "images is a category", input: "images", expected: CategoryImages},
		{name: "videos is a category", input: "videos", expected: CategoryVideos},
		{name: "singular form is rejected", input: "image", wantErr: true},
		{name: "case matters", input: "Images", wantErr: true},
		{name: "empty string is rejected", input: "", wantErr: true},
	}

	for _, c := range cases {
		got, err := ParseCategory(c.input)
		if (err != nil) != c.wantErr {
			t.Errorf("%v\n\tExpected error %v but got %v instead", c.name, c.wantErr, err)
			continue
		}
		if got != c.expected {
			t.Errorf("%v\n\tExpected %v but got %v instead", c.name, c.expected, got)
		}
	}
}

func TestCategoriesOrder(t *testing.T) {
	cs := Categories()
	if len(cs) != 2 || cs[0] != CategoryImages || cs[1] != CategoryVideos {
		t.Errorf("Expected [images videos] but got %v instead", cs)
	}
}
