// Package audit keeps a trail of changes made through the API: who created,
// renamed, moved, switched or deleted what, and when.
//
// Entries are written after the change has been committed and are never
// updated. A failed audit write does not undo the change it describes.
package audit
