package ontology

import "fmt"

// FetchError reports a failed download of an ontology source.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch ontology %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports an ontology document that could not be parsed.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse ontology %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ConversionError reports a failed serialization-format conversion.
type ConversionError struct {
	Source string
	Err    error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("failed to convert ontology %s: %v", e.Source, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }
