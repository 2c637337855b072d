// Package filescan enumerates and scans the file-tree corpus.
//
// Enumeration resolves a scope selector to a directory under the corpus
// root, walks it recursively, and filters out everything that must never be
// scanned: binary and media extensions, minified assets, source maps,
// dependency directories, and files above the size ceiling. The walk itself
// is budget-guarded — on very large trees it aborts early and reports a
// partial listing rather than an error.
//
// Scanning reads one file as a line sequence and reports a match record per
// matching line, with line number, column and a highlighted preview.
package filescan
