package value

// Path is the typed representation of a filesystem path scalar. It is a
// distinct string type so that handlers can distinguish a path slot from an
// ordinary string slot when checking replacement values.
type Path string

func (p Path) String() string { return string(p) }
