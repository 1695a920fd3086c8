// Package frontmatter splits, parses and formats YAML frontmatter in
// Markdown documents.
//
// A frontmatter block starts with a "---" line as the very first line of
// the document and ends at the next "---" line:
//
//	---
//	name: my-skill
//	description: Does one thing well
//	---
//	# Body
//
// [Split] reports which delimiter is missing so validators can explain the
// failure; [Parse] and [MustParse] decode the block into a struct.
package frontmatter
