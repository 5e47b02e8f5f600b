package ldap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeNodeNew(t *testing.T) {
	node := NewTreeNode("cn=Admin,dc=example,dc=com")

	assert.Equal(t, "cn=Admin,dc=example,dc=com", node.DN)
	assert.Equal(t, "Admin", node.DisplayName)
	assert.True(t, node.HasChildrenHint)
	assert.False(t, node.IsLoaded())
	assert.False(t, node.IsExpanded())
}

func TestTreeNodeSetChildren(t *testing.T) {
	node := NewTreeNode("dc=example,dc=com")

	node.SetChildren([]*TreeNode{
		NewTreeNode("ou=Users,dc=example,dc=com"),
		NewTreeNode("ou=Groups,dc=example,dc=com"),
	})

	assert.True(t, node.IsLoaded())
	assert.True(t, node.IsExpanded())
	assert.Len(t, node.Children, 2)
}

func TestTreeNodeSetEmptyChildren(t *testing.T) {
	node := NewTreeNode("ou=Empty,dc=example,dc=com")
	node.SetChildren(nil)

	// Loaded but childless: a leaf, no longer rendered expandable.
	assert.True(t, node.IsLoaded())
	assert.False(t, node.IsExpanded())
	assert.False(t, node.HasChildrenHint)
}

func TestTreeNodeCollapse(t *testing.T) {
	node := NewTreeNode("dc=example,dc=com")
	node.SetChildren([]*TreeNode{NewTreeNode("ou=Users,dc=example,dc=com")})
	require.True(t, node.IsLoaded())

	node.Collapse()
	assert.False(t, node.IsLoaded())
	assert.False(t, node.IsExpanded())
}

func TestDirectoryTreeFindRoot(t *testing.T) {
	tree := NewDirectoryTree("dc=example,dc=com")

	found := tree.FindNode("dc=example,dc=com")
	require.NotNil(t, found)
	assert.Equal(t, "dc=example,dc=com", found.DN)
}

func TestDirectoryTreeFindChild(t *testing.T) {
	tree := NewDirectoryTree("dc=example,dc=com")
	tree.InsertChildren("dc=example,dc=com", []*TreeNode{
		NewTreeNode("ou=Users,dc=example,dc=com"),
		NewTreeNode("ou=Groups,dc=example,dc=com"),
	})

	found := tree.FindNode("ou=Groups,dc=example,dc=com")
	require.NotNil(t, found)
	assert.Equal(t, "Groups", found.DisplayName)
}

func TestDirectoryTreeFindNotFound(t *testing.T) {
	tree := NewDirectoryTree("dc=example,dc=com")
	assert.Nil(t, tree.FindNode("cn=missing,dc=example,dc=com"))
}

func TestDirectoryTreeCaseInsensitiveFind(t *testing.T) {
	tree := NewDirectoryTree("DC=example,DC=com")
	assert.NotNil(t, tree.FindNode("dc=example,dc=com"))
}

func TestDirectoryTreeInsertNestedChildren(t *testing.T) {
	tree := NewDirectoryTree("dc=example,dc=com")

	tree.InsertChildren("dc=example,dc=com", []*TreeNode{
		NewTreeNode("ou=Users,dc=example,dc=com"),
	})
	tree.InsertChildren("ou=Users,dc=example,dc=com", []*TreeNode{
		NewTreeNode("cn=Alice,ou=Users,dc=example,dc=com"),
	})

	found := tree.FindNode("cn=Alice,ou=Users,dc=example,dc=com")
	require.NotNil(t, found)
	assert.Equal(t, "Alice", found.DisplayName)
}

func TestDirectoryTreeInsertUnknownParentIgnored(t *testing.T) {
	tree := NewDirectoryTree("dc=example,dc=com")
	tree.InsertChildren("ou=Nowhere,dc=other,dc=org", []*TreeNode{
		NewTreeNode("cn=x,ou=Nowhere,dc=other,dc=org"),
	})

	assert.False(t, tree.Root.IsLoaded())
	assert.Nil(t, tree.FindNode("cn=x,ou=Nowhere,dc=other,dc=org"))
}
