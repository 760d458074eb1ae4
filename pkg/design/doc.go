// Package design holds the submission record edited by the design form: the
// title block, designers and credits, version ranges and the nested rates
// tree. Constructors return the blank defaults a new form session starts
// from, and VersionString derives the combined compatibility label that is
// stored alongside an accepted submission.
package design
