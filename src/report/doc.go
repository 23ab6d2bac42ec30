// Package report renders the outcome of a trust.TrustValidator run - a
// certificate chain, the revocation evidence gathered along the way,
// and the final validation error, if any - as an ASCII tree, a
// markdown table, or JSON, for display by jtrust-verify.
package report
