// Package present renders turn results as plain text.
//
// Structured rows go through a TableRenderer when one is configured and
// fall back to pipe-delimited lines otherwise. Unique values become a
// bulleted list, dumps become one indented JSON block per record, and
// answers and messages are written as-is.
package present
