// Package pdf defines the PDF object model used throughout this module:
// the [Object] sum type, indirect [Reference]s, and the helpers used to
// walk and resolve a parsed object graph. Lexing, cross-reference
// resolution, stream filtering, object-graph transformation, and content
// interpretation each live in their own subpackage; this package only
// fixes the vocabulary they share.
package pdf
