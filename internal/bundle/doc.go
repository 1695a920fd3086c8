// Package bundle describes the on-disk layout of a claudekit bundle and
// maps its entries to their installed locations.
//
// A bundle holds one subtree per [Scope]:
//
//	<bundle>/global/      -> ~/.claude
//	<bundle>/project/     -> <project root>
//	<bundle>/enterprise/  -> managed settings directory
//
// The managed entries of a scope are the top-level children of its subtree.
// When a subtree is missing or empty, a fixed default list is used so that
// capturing an existing system still knows what to copy.
//
// Timestamped backup copies and files matching the ignore patterns are never
// returned by [Layout.Walk], so they are never copied, compared or counted.
package bundle
