// Package responses formats API success envelopes and RFC 7807 problem
// responses.
package responses
