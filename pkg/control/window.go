package control

import (
	"fmt"

	"github.com/lumina-dev/lumina/pkg/reconciler"
	"github.com/lumina-dev/lumina/pkg/vnode"
)

// Anchor is an edge or corner a window is attached to.
type Anchor string

const (
	AnchorTop         Anchor = "top"
	AnchorBottom      Anchor = "bottom"
	AnchorLeft        Anchor = "left"
	AnchorRight       Anchor = "right"
	AnchorTopLeft     Anchor = "top-left"
	AnchorTopRight    Anchor = "top-right"
	AnchorBottomLeft  Anchor = "bottom-left"
	AnchorBottomRight Anchor = "bottom-right"
	AnchorCenter      Anchor = "center"
)

// anchorFlags are the layer-shell edge bits for each anchor.
var anchorFlags = map[Anchor]int{
	AnchorCenter:      1,
	AnchorTop:         2,
	AnchorRight:       4,
	AnchorLeft:        8,
	AnchorBottom:      16,
	AnchorTopLeft:     2 | 8,
	AnchorTopRight:    2 | 4,
	AnchorBottomLeft:  16 | 8,
	AnchorBottomRight: 16 | 4,
}

// Exclusivity controls whether a window reserves screen space.
type Exclusivity string

const (
	ExclusivityNormal    Exclusivity = "normal"
	ExclusivityExclusive Exclusivity = "exclusive"
	ExclusivityIgnore    Exclusivity = "ignore"
)

// Layer is the stacking layer of a window.
type Layer string

const (
	LayerBackground Layer = "background"
	LayerBottom     Layer = "bottom"
	LayerTop        Layer = "top"
	LayerOverlay    Layer = "overlay"
)

var layerValues = map[Layer]int{
	LayerBackground: 0,
	LayerBottom:     1,
	LayerTop:        2,
	LayerOverlay:    3,
}

// Role selects placement defaults for a window.
type Role string

const (
	RolePanel        Role = "panel"
	RoleDock         Role = "dock"
	RoleNotification Role = "notification"
	RolePopup        Role = "popup"
	RoleDialog       Role = "dialog"
	RoleDesktop      Role = "desktop"
)

type roleDefaults struct {
	anchor      []Anchor
	exclusivity Exclusivity
	layer       Layer
}

var roles = map[Role]roleDefaults{
	RolePanel:        {[]Anchor{AnchorTop, AnchorLeft, AnchorRight}, ExclusivityExclusive, LayerTop},
	RoleDock:         {[]Anchor{AnchorBottom, AnchorLeft, AnchorRight}, ExclusivityExclusive, LayerTop},
	RoleNotification: {[]Anchor{AnchorTopRight}, ExclusivityNormal, LayerOverlay},
	RolePopup:        {[]Anchor{AnchorCenter}, ExclusivityNormal, LayerTop},
	RoleDialog:       {[]Anchor{AnchorCenter}, ExclusivityNormal, LayerOverlay},
	RoleDesktop:      {[]Anchor{AnchorTop, AnchorBottom, AnchorLeft, AnchorRight}, ExclusivityIgnore, LayerBackground},
}

// WindowOptions configures a Window. Zero fields fall back to the role
// defaults, then to a centered, non-exclusive window on the top layer.
type WindowOptions struct {
	Name        string
	Role        Role
	Anchor      []Anchor
	Exclusivity Exclusivity
	Layer       Layer
	// Margins are top, right, bottom, left.
	Margins   [4]int
	Monitor   string
	Hidden    bool
	ClassName string
	CSS       string
}

// Window builds a top-level window element. The reconciler shows it once
// its children are attached.
func Window(opts WindowOptions, children ...any) *vnode.Node {
	return vnode.El(reconciler.WindowTag, WindowProps(opts), children...)
}

// WindowProps resolves opts into the props of a window element.
func WindowProps(opts WindowOptions) vnode.Props {
	def, hasRole := roles[opts.Role]

	anchors := opts.Anchor
	if len(anchors) == 0 {
		anchors = []Anchor{AnchorCenter}
		if hasRole {
			anchors = def.anchor
		}
	}
	excl := opts.Exclusivity
	if excl == "" {
		excl = ExclusivityNormal
		if hasRole {
			excl = def.exclusivity
		}
	}
	layer := opts.Layer
	if layer == "" {
		layer = LayerTop
		if hasRole {
			layer = def.layer
		}
	}

	flags := 0
	for _, a := range anchors {
		flags |= anchorFlags[a]
	}

	exclusivity := 0
	switch excl {
	case ExclusivityExclusive:
		exclusivity = 1
	case ExclusivityIgnore:
		exclusivity = -1
	}

	lv, ok := layerValues[layer]
	if !ok {
		lv = layerValues[LayerTop]
	}

	props := vnode.Props{
		"name":         opts.Name,
		"anchor":       flags,
		"exclusivity":  exclusivity,
		"layer":        lv,
		"marginTop":    opts.Margins[0],
		"marginRight":  opts.Margins[1],
		"marginBottom": opts.Margins[2],
		"marginLeft":   opts.Margins[3],
		"visible":      !opts.Hidden,
	}
	if opts.Monitor != "" {
		props["monitor"] = opts.Monitor
	}
	if opts.ClassName != "" {
		props["className"] = opts.ClassName
	}
	if opts.CSS != "" {
		props["css"] = opts.CSS
	}
	return props
}

// BarWindow is an exclusive panel spanning the top or bottom edge.
func BarWindow(name, monitor string, bottom bool, height int, children ...any) *vnode.Node {
	anchor := []Anchor{AnchorTop, AnchorLeft, AnchorRight}
	if bottom {
		anchor = []Anchor{AnchorBottom, AnchorLeft, AnchorRight}
	}
	if name == "" {
		name = "bar"
	}
	suffix := monitor
	if suffix == "" {
		suffix = "primary"
	}
	opts := WindowOptions{
		Name:        name + "-" + suffix,
		Monitor:     monitor,
		Anchor:      anchor,
		Exclusivity: ExclusivityExclusive,
		Layer:       LayerTop,
	}
	if height > 0 {
		opts.CSS = fmt.Sprintf("min-height: %dpx;", height)
	}
	return Window(opts, children...)
}
