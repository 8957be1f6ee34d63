package core

import "fmt"

// HttpError is any non-2xx response from gradescope. An expired TokenSet
// usually shows up here as a 401/302-to-login rather than as a distinct
// error, so callers should treat it as "re-authenticate and retry by hand".
type HttpError struct {
	Status int
	Url    string
}

func (e *HttpError) Error() string {
	return fmt.Sprintf("gradescope returned http %d for %s", e.Status, e.Url)
}

// ScrapeError means a field or element this client depends on is gone
// from a parsed page. The field names are a compatibility contract with
// gradescope's markup, so this signals the page layout has drifted.
type ScrapeError struct {
	Field string
}

func (e *ScrapeError) Error() string {
	return fmt.Sprintf("expected field %q is missing from the page, its layout may have changed", e.Field)
}
