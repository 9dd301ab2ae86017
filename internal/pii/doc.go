// Package pii decides whether an outgoing candidate message carries personal
// information that must not be sent to a recruiter.
//
// The classifier is heuristic and pattern based. A clean verdict is a
// best-effort advisory for the messaging UI, not a guarantee that the text is
// free of PII, and it must not be treated as a security boundary. Inputs the
// patterns do not understand (empty strings, binary data, invalid UTF-8) fail
// open to a clean verdict.
package pii
