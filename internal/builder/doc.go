/*
Package builder is responsible for the construction of render graphs from
graph description files. It acts as the bridge between the static
configuration model (defined in the 'config' package) and the resolution
engine (the 'rendergraph' package).

The primary artifact produced by this package is a *Built: an unresolved
*rendergraph.Graph together with the attachment set and target settings it
was declared with.

# How It Works

Build runs in passes, each of which collects every problem it finds before
the next pass starts:

 1. **Attachments:** every declared attachment is registered in a fresh
    rendergraph.Attachments set. The attachment named by the target's
    `presentation` is declared as the presentation attachment.
 2. **Passes:** every pass is allocated in the graph's arena.
 3. **Annotations:** the `with` and `stores` tokens of each pass are applied
    with rendergraph.Load, Clear and Bar.
 4. **Chains:** every chain is mirrored into a dag.Graph and checked for
    cycles, because the resolver assumes acyclic input. Only then are the
    chains added to the render graph.

Unknown names, duplicate declarations and invalid view kinds are reported by
the builder and wrapped in ErrInvalidGraph. Illegal combinations of
annotations are reported later, by (*rendergraph.Graph).Generate, with their
rendergraph error kinds.
*/
package builder
