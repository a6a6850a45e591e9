package loader

import "fmt"

// FetchError reports a failed attempt to retrieve a URL. It carries the HTTP
// status when the server responded and the underlying transport error when it
// did not. A FetchError is fatal to the single load attempt that raised it;
// any previously loaded resource is left untouched.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ExtractError reports an unreadable or corrupt document. Like FetchError it
// is fatal only to the load attempt that raised it.
type ExtractError struct {
	Name string
	Err  error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Name, e.Err)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}
