package el

import "github.com/marycampus/advisor/pkg/vdom"

// Aliases for the VDOM primitives the DSL hands out.
type VNode = vdom.VNode
type VKind = vdom.VKind
type Props = vdom.Props
type Attr = vdom.Attr
type EventHandler = vdom.EventHandler
type Component = vdom.Component
