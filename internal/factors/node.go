package factors

// Node is one validated entry of a factor configuration tree. A node with
// children is resolved to a composite implementation; otherwise Algorithm
// and Method select a leaf implementation constructed from Config.
type Node struct {
	Name      string `json:"name"`
	Priority  int    `json:"priority"`
	Algorithm string `json:"algorithm,omitempty"`
	Method    string `json:"method,omitempty"`
	Config    Config `json:"config,omitempty"`
	Children  []Node `json:"children,omitempty"`
}

func (n Node) IsComposite() bool { return len(n.Children) > 0 }
