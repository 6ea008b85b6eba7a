// Package handlers contains HTTP request handlers organized by business
// domain. Every handler renders failures through responses.FromError.
package handlers
