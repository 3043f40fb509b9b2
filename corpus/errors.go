package corpus

import "errors"

var (
	// ErrCorpusUnavailable indicates the corpus source could not be read or parsed.
	ErrCorpusUnavailable = errors.New("corpus unavailable")

	// ErrDuplicateID indicates two records share an id.
	ErrDuplicateID = errors.New("duplicate entry id")
)
