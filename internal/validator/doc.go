// Package validator provides the shared issue model used by claudekit's
// document validation.
//
// # Core Concepts
//
//   - [Severity]: Distinguishes between blocking errors and non-blocking warnings.
//   - [Issue]: A single problem with file and field context.
//   - [Result]: Aggregates issues from many files and provides helper methods.
//   - [Reporter]: Renders a Result as colored text or JSON.
//
// # Basic Usage
//
//	total := &validator.Result{}
//	for _, path := range files {
//		total.Merge(path, check(path))
//	}
//	if err := validator.NewReporter(os.Stdout, validator.FormatText).Report(total); err != nil {
//		return err
//	}
package validator
