// Package core holds the CSV logic of the SmartMart console: the record
// kind registry, the header classifier, and the export encoder.
//
// This package has no knowledge of HTTP or of the remote API. The page
// controllers, the console server and the CLI all call into it.
//
// # Record Kinds
//
// Three kinds are registered at init time: products, categories and sales.
// Each [KindSpec] carries the fixed Expected Header Set, the display label
// per locale and the download file name.
//
// # Classification
//
// [Classifier.Classify] reads an upload fully into memory, takes the first
// line of the trimmed text as the header row and accepts the file when at
// least Threshold of the expected headers are present:
//
//	ok := core.Classify(ctx, file, core.KindProducts)
//	if !ok {
//	    banner = core.RejectionMessage(core.KindProducts)
//	}
//
// Every failure (read error, cancellation, size limit, undecodable bytes,
// empty content, unknown kind) is a reject. [Classifier.Evaluate] returns
// the score and the matched and missing columns for diagnostics.
//
// # Export
//
// [Encode] writes the Expected Header Set followed by one line per record.
// The baseline format does not escape values; [EncodeOptions.Quote] turns on
// RFC 4180 quoting.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each category has a code for support reference:
//
//   - API001-API004: remote API transport errors
//   - CSV001-CSV002: classification errors
//   - FILE001-FILE005: file errors (size, encoding, empty)
//   - IMP001-IMP002: import gate errors
//   - RPT001: report errors
//   - RATE001: rate limiting
package core
