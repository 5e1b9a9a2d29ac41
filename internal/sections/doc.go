// Package sections splits one HTML document into an ordered list of
// logical sections. Subdivision prefers H2 headings, falls back to H1,
// and as a last resort bisects the document's token stream near a
// sentence boundary.
package sections
