package catalog

import "fmt"

// LoadError reports a catalog source that could not be opened, read or parsed.
type LoadError struct {
	Path string
	Op   string // "open", "read", "parse"
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("catalog load error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// NotFoundError is returned when a product or category id no longer resolves,
// typically a stale button after a reload.
type NotFoundError struct {
	Kind string // "car", "item", "category"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}
