package control

import (
	"strconv"

	"github.com/lumina-dev/lumina/pkg/host"
	"github.com/lumina-dev/lumina/pkg/reactive"
	"github.com/lumina-dev/lumina/pkg/reconciler"
	"github.com/lumina-dev/lumina/pkg/vnode"
)

// For renders one subtree per element of each() into a single box.
//
// Whenever a signal read by each changes, every item subtree is disposed
// and the list is rebuilt from scratch, in order; items whose node has no
// key get their index as key. An empty list mounts fallback instead, when
// it is non-nil. Item nodes are built untracked, so render may read signals
// freely without causing a rebuild.
func For[T any](each func() []T, render func(item T, index int) *vnode.Node, fallback *vnode.Node) *vnode.Node {
	comp := func(vnode.Props) *vnode.Node {
		report := reporter("For")
		ref := host.Ref(func(container host.Instance) {
			reactive.CreateEffect(func() reactive.Cleanup {
				items := each()
				// previous mounts are children of this effect and were
				// disposed before this run started
				if len(items) == 0 {
					if fallback != nil {
						if _, err := reconciler.RenderChild(fallback, container); err != nil {
							report(err)
						}
					}
					return nil
				}
				for i, item := range items {
					node := vnode.RenderProp(func() *vnode.Node {
						n := render(item, i)
						if n != nil && n.Key == "" {
							n = vnode.WithKey(n, strconv.Itoa(i))
						}
						return n
					})
					if _, err := reconciler.RenderChild(node, container); err != nil {
						report(err)
					}
				}
				return nil
			})
		})
		return vnode.El(BoxTag, vnode.Props{"ref": ref})
	}
	return vnode.Named("For", vnode.Pure(comp), nil)
}
