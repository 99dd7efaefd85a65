package pipeline_test

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/alnah/go-mato/internal/pipeline"
	"github.com/alnah/go-mato/internal/syntax"
)

func image(path string) syntax.Node {
	return syntax.Image{
		Caption: syntax.Lit("c"),
		Path:    syntax.Lit(path),
		Size:    syntax.ImageSizeSpec{Width: syntax.Lit("100"), Height: syntax.Lit("100")},
	}
}

func TestImageConverter(t *testing.T) {
	t.Parallel()

	dir := "/docs/book"
	abs := "/abs/pic.png"
	if runtime.GOOS == "windows" {
		dir = `C:\docs\book`
		abs = `C:\abs\pic.png`
	}

	tests := []struct {
		name      string
		sourceDir string
		in        syntax.Node
		want      syntax.Node
	}{
		{
			name:      "relative path joined",
			sourceDir: dir,
			in:        image("img/a.png"),
			want:      image(filepath.Join(dir, "img", "a.png")),
		},
		{
			name:      "parent path joined lexically",
			sourceDir: dir,
			in:        image("../a.png"),
			want:      image(filepath.Join(dir, "..", "a.png")),
		},
		{
			name:      "absolute path unchanged",
			sourceDir: dir,
			in:        image(abs),
			want:      image(abs),
		},
		{
			name:      "url unchanged",
			sourceDir: dir,
			in:        image("https://example.com/a.png"),
			want:      image("https://example.com/a.png"),
		},
		{
			name:      "no source dir",
			sourceDir: "",
			in:        image("a.png"),
			want:      image("a.png"),
		},
		{
			name:      "nested images",
			sourceDir: dir,
			in:        syntax.List{Items: syntax.ListItem{Content: image("a.png")}},
			want:      syntax.List{Items: syntax.ListItem{Content: image(filepath.Join(dir, "a.png"))}},
		},
		{
			name:      "other nodes untouched",
			sourceDir: dir,
			in:        syntax.HyperRef{Text: syntax.Lit("t"), URL: syntax.Lit("a.png")},
			want:      syntax.HyperRef{Text: syntax.Lit("t"), URL: syntax.Lit("a.png")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := &pipeline.ImageConverter{SourceDir: tt.sourceDir}
			got, err := c.Process(context.Background(), tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Process() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
