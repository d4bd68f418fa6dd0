// Package provquery builds query strings for the provider search API.
//
// The API exposes five search vectors (only one active per query), filters
// whose values are joined by OR ("|") or AND ("^"), an optional location
// constraint and free-form paging/sorting parameters.
//
//	q := provquery.NewBuilder().
//	    PerPage(10).
//	    Gender("female").
//	    Specialties("Cardiology").Or("Oncology").
//	    Name("Smith").
//	    String()
//	// ?per_page=10&name=Smith&filter=gender:female&filter=specialties:Cardiology|Oncology
//
// Filters on one field that switch conjunction are rewrapped: the existing
// node becomes a single term of a new node under the new conjunction.
//
// Keys and values are written verbatim. Values containing "&", "=", "|" or
// "^" produce ambiguous output; callers must avoid them.
package provquery
