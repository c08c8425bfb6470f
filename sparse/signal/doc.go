// Package signal defines the two-channel frequency-domain signal shared by
// the block-sparse recovery packages, together with its per-bin mixed norm
// and error metrics.
//
// A [Signal] holds two parallel complex channels A and E of equal length.
// Bin i of both channels corresponds to the same physical frequency. The
// joint (L12) magnitude of bin i is sqrt(|A[i]|^2 + |E[i]|^2).
package signal
