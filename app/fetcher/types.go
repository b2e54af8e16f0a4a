package fetcher

import (
	"fmt"

	"github.com/sinodesk/sinodesk/app/extractor"
)

// Content is the result of fetching an article URL.
type Content struct {
	// Text is the cleaned article body text.
	Text string
	// HTML is the raw page when the article was fetched generically. Site
	// strategies that hit a JSON API leave it nil.
	HTML []byte
	// Meta carries metadata a site strategy produced directly. For generic
	// fetches it is zero and the caller extracts metadata from HTML.
	Meta extractor.Metadata
}

// FetchError reports a failed article fetch: network failure, non-2xx status,
// unusable content type, or a page with no extractable content.
type FetchError struct {
	URL    string
	Reason string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Reason, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Reason)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
