package genmsg

import "fmt"

// MissingFileError reports a merge source that is absent from a locale
// directory. Callers that merge best-effort detect it with errors.As and
// skip the group instead of failing the run.
type MissingFileError struct {
	Path string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("cannot generate because file not found: %s", e.Path)
}
