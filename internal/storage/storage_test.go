package storage

import (
	"errors"
	"testing"
)

func TestValidateFilename(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		valid    bool
	}{
		{name: "plain name", filename: "cat.jpg", valid: true},
		{name: "spaces and unicode", filename: "liburan di pantai 🏖.mp4", valid: true},
		{name: "dots inside a name", filename: "a..b.png", valid: true},
		{name: "hidden file", filename: ".cat.jpg", valid: true},
		{name: "empty", filename: ""},
		{name: "current directory", filename: "."},
		{name: "parent directory", filename: ".."},
		{name: "parent segment", filename: "../cat.jpg"},
		{name: "nested path", filename: "a/b.jpg"},
		{name: "absolute path", filename: "/etc/passwd"},
		{name: "windows separator", filename: `..\cat.jpg`},
		{name: "nul byte", filename: "cat\x00.jpg"},
	}

	for _, c := range cases {
		err := ValidateFilename(c.filename)
		if c.valid && err != nil {
			t.Errorf("%v\n\tExpected %q to be valid but got %v", c.name, c.filename, err)
		}
		if !c.valid && !errors.Is(err, ErrPathTraversal) {
			t.Errorf("%v\n\tExpected ErrPathTraversal for %q but got %v", c.name, c.filename, err)
		}
	}
}
