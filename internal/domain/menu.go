package domain

// MenuNode is a CMS menu record. The flat view never populates Children;
// the tree view does. Fields the site does not model are kept in Extra.
type MenuNode struct {
	ID                  int            `json:"id" validate:"gt=0"`
	Title               string         `json:"title"`
	URL                 string         `json:"url,omitempty"`
	LinkURL             string         `json:"linkUrl,omitempty"`
	DisplayInNavigation *bool          `json:"displayInNavigation,omitempty"`
	ParentID            *int           `json:"parent_page,omitempty"`
	ModifiedAt          *Timestamp     `json:"modifiedDT,omitempty"`
	Content             string         `json:"content,omitempty"`
	Children            []MenuNode     `json:"children,omitempty"`
	Extra               map[string]any `json:",unknown"`
}

// IsRoot reports whether the node declares no parent.
// A zero parent id counts as no parent.
func (m *MenuNode) IsRoot() bool {
	return m.ParentID == nil || *m.ParentID == 0
}

// Path returns the URL a visitor reaches the page at, preferring LinkURL.
func (m *MenuNode) Path() string {
	if m.LinkURL != "" {
		return m.LinkURL
	}
	return m.URL
}

// Clone returns a deep copy of m including its subtree.
func (m *MenuNode) Clone() MenuNode {
	c := *m
	c.DisplayInNavigation = clonePtr(m.DisplayInNavigation)
	c.ParentID = clonePtr(m.ParentID)
	c.ModifiedAt = m.ModifiedAt.clone()
	c.Children = CloneMenu(m.Children)
	c.Extra = cloneExtra(m.Extra)
	return c
}

// CloneMenu deep-copies a list of menu nodes and their subtrees.
func CloneMenu(in []MenuNode) []MenuNode {
	if in == nil {
		return nil
	}
	out := make([]MenuNode, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
