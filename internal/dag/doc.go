// Package dag is a small string-keyed directed graph. The builder mirrors the
// chains of a graph description file into it to reject cycles before the
// render graph, which assumes acyclic input, ever sees them.
package dag
