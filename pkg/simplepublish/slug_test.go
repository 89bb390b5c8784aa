package simplepublish_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/contentops/simple-publish/pkg/simplepublish"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{
			name:  "simple title",
			title: "Hello World",
			want:  "hello-world",
		},
		{
			name:  "punctuation stripped",
			title: "Intro to Testing!",
			want:  "intro-to-testing",
		},
		{
			name:  "repeated separators collapse",
			title: "a  --  b",
			want:  "a-b",
		},
		{
			name:  "leading and trailing whitespace",
			title: "  Trimmed Title  ",
			want:  "trimmed-title",
		},
		{
			name:  "digits kept",
			title: "Go 1.24 Release Notes",
			want:  "go-124-release-notes",
		},
		{
			name:  "mixed case folded",
			title: "CamelCase TITLE",
			want:  "camelcase-title",
		},
		{
			name:  "only punctuation yields empty",
			title: "!!! ???",
			want:  "",
		},
		{
			name:  "empty title",
			title: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, simplepublish.Slugify(tt.title))
		})
	}
}
