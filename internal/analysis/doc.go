// Package analysis characterises joint loci.
//
//   - [Spectrum]: magnitude spectrum of a coordinate series
//   - [LocusSpectrum]: spectra of the x and y coordinates of a locus
//   - [DominantHarmonic]: strongest non-constant harmonic
//
// A locus sampled over exactly one rotation period is periodic, so its
// spectrum concentrates in the first few harmonics of the crank frequency.
// Energy spread over many harmonics points at a jerky path, e.g. a foot that
// snaps between branches.
package analysis
