// Package datname parses DAT entry names into structured tags.
//
// DAT files encode most per-release facts inside the game name itself:
// "Final Fantasy VII (USA) (Disc 1) (Rev 1) [!]". The parser splits the
// name into a title and an ordered sequence of parenthesized and bracketed
// tags, then classifies each tag as a region list, revision, version, disc
// marker, language list, dump-status marker, or free-form flag.
//
// Parsing is pure and allocation-light; it runs once per DAT entry during
// import and may be called from as many goroutines as there are DAT files.
package datname
