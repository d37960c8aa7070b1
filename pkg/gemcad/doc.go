// Package gemcad reads GemCad-style faceting descriptions.
//
// A description is line oriented. Each logical line starts with a single
// command letter followed by whitespace separated fields. A physical line
// that begins with a space or tab continues the previous logical line.
// The commands understood are:
//
//	g <teeth>             index gear resolution (default 64)
//	y <symmetry>          declared mirror symmetry (default 8)
//	I <index>             refractive index (default 1.54)
//	H <text>              header; the first one names the cut
//	a <angle> <distance> <index> [n <name>] [index ...] [G comment]
//
// Unknown commands are ignored so newer files still load. A facet whose
// angle or distance is not a number is dropped and reported as a
// ParseIssue; everything else that is malformed falls back to a default.
//
// Parsed cuts are plain values. The builder in package cutter turns one
// into a solid; nothing here touches geometry.
package gemcad
