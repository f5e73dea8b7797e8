// Package domain models City of Charleston road-closure flood data and the
// belief state derived from it.
//
// # Data Source
//
// Historical training data comes from the Charleston Road Closures dataset
// (open data portal export). Each row is one closure record with the columns:
//
//	STREET  - road segment name, e.g. "FISHBURNE ST"
//	START   - closure start timestamp
//	REASON  - closure cause; only REASON == "FLOOD" rows are used
//
// Live observations arrive as a separate tabular stream with lower-case
// columns:
//
//	street      - road segment name
//	start_time  - observation timestamp
//	split       - upstream-assigned partition tag, carried but never read here
//
// # Street Identifiers
//
// Street names are normalized to a canonical identifier: surrounding
// whitespace trimmed, upper-cased, interior spaces replaced with
// underscores ("Fishburne St" → "FISHBURNE_ST"). The downstream map
// renderer joins predictions against road geometry on exactly this
// underscored form, so the normalization is part of the external contract.
//
// # Incidents
//
// Sparse closure records are grouped into incidents: all FLOOD rows sharing
// the same UTC calendar date belong to one incident, representing the set
// of roads that flooded together during one storm. A street appears at most
// once per incident regardless of how many rows mention it that day. The
// day granularity is a configured choice (config: cluster_by), not a law of
// the data; Charleston flood closures cluster tightly around tidal and
// rainfall peaks, so a calendar day approximates one occurrence well.
//
// # Belief Propagation
//
// The incident history induces a directed weighted network over road
// segments (built in package network). Edge weight w(a→b) estimates the
// conditional probability that b floods given a has flooded, from
// co-occurrence frequency. During a run, confirmed observations accumulate
// into a monotonically growing evidence set per time window, and every
// unobserved road receives a noisy-OR combination over its evidenced
// parents:
//
//	p(v) = 1 − Π (1 − w(p→v))   over parents p in the evidence set
//
// The chance that a road stays dry is the product of the chances that each
// flooded neighbor independently fails to propagate to it. Evidence roads
// are pinned to probability 1. The combination is one hop deep and closed
// form, so identical inputs reproduce exactly and adding evidence never
// lowers an estimate.
//
// # Determinism
//
// Every collection that feeds a boundary decision (node membership, edge
// retention, report ordering) is iterated in sorted order. Identical inputs
// and thresholds produce byte-identical networks and documents.
package domain
