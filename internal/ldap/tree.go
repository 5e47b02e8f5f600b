package ldap

import "strings"

// TreeNode is one entry in the lazily loaded directory tree. Children are
// nil until loaded; an empty non-nil slice means loaded with no children.
type TreeNode struct {
	DN          string
	DisplayName string
	Children    []*TreeNode

	// HasChildrenHint stays true until a load proves the node is a leaf,
	// so unloaded nodes render as expandable.
	HasChildrenHint bool

	loaded bool
}

// NewTreeNode creates an unloaded node for a DN.
func NewTreeNode(dn string) *TreeNode {
	return &TreeNode{
		DN:              dn,
		DisplayName:     RDNDisplayName(dn),
		HasChildrenHint: true,
	}
}

// IsLoaded reports whether the node's children have been fetched.
func (n *TreeNode) IsLoaded() bool {
	return n.loaded
}

// IsExpanded reports whether the node is loaded and has children.
func (n *TreeNode) IsExpanded() bool {
	return n.loaded && len(n.Children) > 0
}

// SetChildren installs the node's children, marking it loaded.
func (n *TreeNode) SetChildren(children []*TreeNode) {
	n.HasChildrenHint = len(children) > 0
	n.Children = children
	n.loaded = true
}

// Collapse drops the node's children from memory; a later expand reloads
// them.
func (n *TreeNode) Collapse() {
	n.Children = nil
	n.loaded = false
}

// DirectoryTree is the lazily loaded tree rooted at the session base DN.
type DirectoryTree struct {
	RootDN string
	Root   *TreeNode
}

// NewDirectoryTree creates a tree with an unloaded root node.
func NewDirectoryTree(rootDN string) *DirectoryTree {
	return &DirectoryTree{
		RootDN: rootDN,
		Root:   NewTreeNode(rootDN),
	}
}

// FindNode locates a node by DN, case-insensitively, depth-first. Returns
// nil when the DN is not in the loaded portion of the tree.
func (t *DirectoryTree) FindNode(dn string) *TreeNode {
	return findInNode(t.Root, dn)
}

func findInNode(node *TreeNode, dn string) *TreeNode {
	if strings.EqualFold(node.DN, dn) {
		return node
	}
	for _, child := range node.Children {
		if found := findInNode(child, dn); found != nil {
			return found
		}
	}
	return nil
}

// InsertChildren installs children under the node with the given DN. A DN
// outside the loaded tree is ignored.
func (t *DirectoryTree) InsertChildren(parentDN string, children []*TreeNode) {
	if node := t.FindNode(parentDN); node != nil {
		node.SetChildren(children)
	}
}

// LoadChildren fetches a node's immediate children with a one-level search
// and installs them.
func (t *DirectoryTree) LoadChildren(conn *Connection, parentDN string) error {
	entries, err := conn.SearchChildren(parentDN)
	if err != nil {
		return err
	}
	children := make([]*TreeNode, 0, len(entries))
	for _, entry := range entries {
		children = append(children, NewTreeNode(entry.DN))
	}
	t.InsertChildren(parentDN, children)
	return nil
}
