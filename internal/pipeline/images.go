package pipeline

import (
	"context"
	"path/filepath"

	"github.com/alnah/go-mato/internal/syntax"
)

// ImageConverter resolves relative image paths against SourceDir.
// Resolution is lexical; the filesystem is not consulted.
type ImageConverter struct {
	SourceDir string
}

var _ Processor = (*ImageConverter)(nil)

// Process rewrites the Path literal of every Image node. Absolute paths,
// URLs and anchors are left alone, as is every tree when SourceDir is empty.
func (c *ImageConverter) Process(_ context.Context, n syntax.Node) (syntax.Node, error) {
	if c.SourceDir == "" {
		return n, nil
	}
	return syntax.Transform(n, func(n syntax.Node) syntax.Node {
		img, ok := n.(syntax.Image)
		if !ok {
			return n
		}
		path, ok := img.Path.(syntax.Literal)
		if !ok || !isRelativePath(path.Text) {
			return n
		}
		img.Path = syntax.Lit(filepath.Join(c.SourceDir, path.Text))
		return img
	}), nil
}
