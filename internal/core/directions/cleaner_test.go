package directions

import "testing"

func TestCleanBody(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		boundary int
		want     string
	}{
		{
			name:     "cut after boundary",
			text:     "Prep: 5 m\nStir.",
			boundary: len("Prep: 5 m"),
			want:     "Stir.",
		},
		{
			name:     "strips label residue",
			text:     "xx :.-\t body",
			boundary: 2,
			want:     "body",
		},
		{
			name:     "boundary at end keeps original",
			text:     "Cook: 45 min. Mix everything and bake.",
			boundary: len("Cook: 45 min. Mix everything and bake."),
			want:     "Cook: 45 min. Mix everything and bake.",
		},
		{
			name:     "short text without header unchanged",
			text:     "line 1\nline 2\nline 3",
			boundary: 0,
			want:     "line 1\nline 2\nline 3",
		},
		{
			name:     "drops six lines",
			text:     "l1\nl2\nl3\nl4\nl5\nl6\n  \n  l7\nl8",
			boundary: 0,
			want:     "l7\nl8",
		},
		{
			name:     "exactly six lines keeps original",
			text:     "l1\nl2\nl3\nl4\nl5\nl6",
			boundary: 0,
			want:     "l1\nl2\nl3\nl4\nl5\nl6",
		},
		{
			name:     "empty text",
			text:     "",
			boundary: 0,
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanBody(tt.text, tt.boundary); got != tt.want {
				t.Errorf("CleanBody() = %q, want %q", got, tt.want)
			}
		})
	}
}
