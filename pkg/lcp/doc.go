// Package lcp builds and queries relative-compression (RLZ) indexes over
// integer sequences with strong local self-similarity, such as LCP arrays of
// related text collections.
//
// A target sequence is stored as a table of phrases. Each phrase is either a
// literal run kept inline or a copy of a run of an external reference
// sequence. The reference is borrowed, never copied: the index keeps a
// [Reference] handle that must stay valid for as long as copy phrases are
// queried.
//
// # Architecture
//
//	matches ──► Parse ──► Coordinator ──┬──► Builder ──► Index
//	                                    └──► StatsObserver (any Observer)
//
// [Parse] replays a match list over the target coordinate space and emits
// literal/copy/end events. The [Coordinator] forwards each event, in order,
// to every registered [Observer]. The [Builder] turns the stream into an
// immutable [Index] bound to a reference.
//
// # Usage
//
//	ref := lcp.NewReference(refSymbols)
//	idx, err := lcp.Build(ref, target, &matcher.Greedy{MinLength: 16})
//	if err != nil {
//	    return err
//	}
//	v, err := idx.At(42)
//
// Persisting and restoring:
//
//	data, err := lcp.Dump(idx, lcp.WithCodec(lcp.CodecZstd))
//	restored, err := lcp.Load(data)
//	err = restored.SetSource(ref)
//
// # Thread Safety
//
// Construction is single threaded. A bound Index is immutable and safe for
// any number of concurrent readers. SetSource belongs to construction: call
// it before sharing the index.
package lcp
