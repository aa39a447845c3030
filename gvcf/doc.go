// Package gvcf aggregates per-position site and indel genotype calls
// of one sample into genome VCF (gVCF) records.
//
// An Aggregator consumes calls for one contig range in position order
// and writes one record for every reported position: either as part of
// a compressed block of non-variant sites, as an individual site
// record, or as part of an indel record. Sites that fall inside
// called indels are reinterpreted according to the number of
// haplotypes that still cover them.
package gvcf
