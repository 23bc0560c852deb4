package domain

// WebsiteConfig is the per-site configuration record from the CMS.
// Fields the site does not model are kept in Extra and round-trip unchanged.
type WebsiteConfig struct {
	ID           int            `json:"id,omitzero"`
	SiteName     string         `json:"siteName,omitempty"`
	WebsiteTitle string         `json:"websiteTitle,omitempty"`
	Description  string         `json:"description,omitempty"`
	SiteURL      string         `json:"siteUrl,omitempty"`
	Logo         string         `json:"logo,omitempty"`
	SocialLinks  []string       `json:"socialLinks,omitempty"`
	Extra        map[string]any `json:",unknown"`
}

// DisplayName returns the site name, falling back to the website title.
func (w *WebsiteConfig) DisplayName() string {
	if w.SiteName != "" {
		return w.SiteName
	}
	return w.WebsiteTitle
}

// Clone returns a deep copy of w.
func (w *WebsiteConfig) Clone() WebsiteConfig {
	c := *w
	c.SocialLinks = cloneSlice(w.SocialLinks)
	c.Extra = cloneExtra(w.Extra)
	return c
}
