package engine

import (
	"context"

	"github.com/jonwraymond/memoize/fingerprint"
)

// The resolution chain rides the context handed to Query.Run: each
// in-flight fingerprint on the current task tree links to its parent.
// Re-entering a fingerprint already on the chain is a cycle, caught
// before it can deadlock the in-flight deduplication or recurse
// forever.

type chainKey struct{}

type chainNode struct {
	parent *chainNode
	digest fingerprint.Digest
}

func withChain(ctx context.Context, d fingerprint.Digest) context.Context {
	parent, _ := ctx.Value(chainKey{}).(*chainNode)
	return context.WithValue(ctx, chainKey{}, &chainNode{parent: parent, digest: d})
}

func chainContains(ctx context.Context, d fingerprint.Digest) bool {
	node, _ := ctx.Value(chainKey{}).(*chainNode)
	for ; node != nil; node = node.parent {
		if node.digest == d {
			return true
		}
	}
	return false
}
