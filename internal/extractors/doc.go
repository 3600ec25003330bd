// Package extractors provides implementations of the TextExtractor interface
// for various document formats. Each extractor knows how to recover text
// content from specific MIME types and file extensions.
//
// Extractors are registered with the Registry at startup.
package extractors
