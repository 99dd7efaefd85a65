package syntax

// Lit returns a Literal node.
func Lit(s string) Node { return Literal{Text: s} }

// IsEmpty reports whether n is the Empty node or nil.
func IsEmpty(n Node) bool {
	if n == nil {
		return true
	}
	_, ok := n.(Empty)
	return ok
}

// Concat composes a and b, dropping either side when it is Empty.
func Concat(a, b Node) Node {
	switch {
	case IsEmpty(a) && IsEmpty(b):
		return Empty{}
	case IsEmpty(a):
		return b
	case IsEmpty(b):
		return a
	}
	return Cat{Left: a, Right: b}
}

// Sequence folds nodes into a left-leaning Cat chain.
func Sequence(nodes ...Node) Node {
	var out Node = Empty{}
	for _, n := range nodes {
		out = Concat(out, n)
	}
	return out
}

// Text concatenates the literal text found under n, ignoring markup.
// Heading titles and meta-data values are read this way by the renderers.
func Text(n Node) string {
	var b []byte
	Walk(n, func(n Node) bool {
		switch v := n.(type) {
		case Literal:
			b = append(b, v.Text...)
		case Preformatted:
			b = append(b, v.Text...)
		case EscapeLit:
			b = append(b, v.Text...)
		case PassThrough:
			b = append(b, v.Text...)
		case LineBreak:
			b = append(b, '\n')
		}
		return true
	})
	return string(b)
}
