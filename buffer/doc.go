// Package buffer
// Author: momentics <momentics@gmail.com>
//
// Dual-cursor, growable byte buffer used as the single staging area for
// descriptor, socket and encrypted-channel I/O and for in-place edits
// (insertion, deletion, substitution) of its contents.
//
// A Buffer owns one contiguous backing store. Live content is the range
// [Head, Tail) of that store. Head and tail are kept as offsets, so growth
// may relocate the store without invalidating cursors. Slices obtained from
// Bytes are only valid until the next mutating call.
//
// A Buffer has a single owner and is not safe for concurrent use.
package buffer
