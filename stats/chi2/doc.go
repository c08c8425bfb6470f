// Package chi2 computes chi-squared energy thresholds for frequency blocks.
//
// Under the null hypothesis each frequency bin of a two-channel signal
// contributes |A|^2 + |E|^2 ~ Scale * Chi^2(DegreesOfFreedom). A block of n
// bins therefore follows Scale * Chi^2(n * DegreesOfFreedom), and a block is
// declared active when its energy exceeds the inverse survival value at the
// requested miss probability.
package chi2
