// Package blocktree builds an adaptive block decomposition of a two-channel
// frequency series by bottom-up statistical merging.
//
// Construction starts from a fine regular partition and repeatedly merges
// adjacent blocks whose combined energy stays below the chi-squared
// threshold of the merged extent. The first pass merges groups of four
// blocks, falling back to pairs; later passes merge pairs of comparable
// size only. Pair passes repeat until one of them changes nothing; at
// least one pair pass always runs.
//
// Each pass reads the frozen row sequence of the previous pass and builds a
// new one, so no row is shifted while it is being scanned.
package blocktree
