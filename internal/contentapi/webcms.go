package contentapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/recipespark/content-core/internal/domain"
)

// MenuQuery filters the menu listing.
type MenuQuery struct {
	DomainID            int
	DisplayInNavigation *bool
	PageNumber          int
	PageSize            int
}

func (q MenuQuery) values() url.Values {
	v := url.Values{}
	if q.DomainID > 0 {
		v.Set("domainId", strconv.Itoa(q.DomainID))
	}
	if q.DisplayInNavigation != nil {
		v.Set("displayInNavigation", strconv.FormatBool(*q.DisplayInNavigation))
	}
	pn, ps := q.PageNumber, q.PageSize
	if pn <= 0 {
		pn = 1
	}
	if ps <= 0 {
		ps = 50
	}
	v.Set("pageNumber", strconv.Itoa(pn))
	v.Set("pageSize", strconv.Itoa(ps))
	return v
}

// MenuPage is the paged payload of the menu listing.
type MenuPage struct {
	Items      []domain.MenuNode `json:"items"`
	TotalCount int               `json:"totalCount,omitzero"`
	PageNumber int               `json:"pageNumber,omitzero"`
	PageSize   int               `json:"pageSize,omitzero"`
}

// Website fetches the configured site's settings.
func (c *Client) Website(ctx context.Context) (domain.Envelope[domain.WebsiteConfig], error) {
	ref := strconv.Itoa(c.opts.WebsiteID)
	return getEnvelope[domain.WebsiteConfig](ctx, c, "website", ref, "/webcms/websites/"+ref, nil, nil)
}

// MenuHierarchy fetches the site's menu as a flat, parent-referencing list.
func (c *Client) MenuHierarchy(ctx context.Context) (domain.Envelope[[]domain.MenuNode], error) {
	ref := strconv.Itoa(c.opts.WebsiteID)
	return getEnvelope(ctx, c, "menuHierarchy", ref, "/webcms/websites/"+ref+"/menu-hierarchy", nil,
		func(env *domain.Envelope[[]domain.MenuNode]) error {
			if env.Data == nil {
				return errNotList
			}
			return c.validator.Var(env.Data, "dive")
		})
}

// Menus lists menu items.
func (c *Client) Menus(ctx context.Context, q MenuQuery) (domain.Envelope[MenuPage], error) {
	return getEnvelope(ctx, c, "menus", "", "/webcms/menus", q.values(),
		func(env *domain.Envelope[MenuPage]) error {
			if env.Data.Items == nil {
				return fmt.Errorf("data.items %w", errNotList)
			}
			return nil
		})
}

// Menu fetches one menu item, including its page content.
func (c *Client) Menu(ctx context.Context, id int) (domain.Envelope[domain.MenuNode], error) {
	ref := strconv.Itoa(id)
	return getEnvelope(ctx, c, "menu", ref, "/webcms/menus/"+ref, nil,
		func(env *domain.Envelope[domain.MenuNode]) error {
			return c.validator.Validate(env.Data)
		})
}

// FindMenuByURL finds the site's menu item whose url equals path and fetches
// its full record.
func (c *Client) FindMenuByURL(ctx context.Context, path string) (domain.Envelope[domain.MenuNode], error) {
	list, err := c.Menus(ctx, MenuQuery{DomainID: c.opts.WebsiteID, PageSize: 100})
	if err != nil {
		return domain.Envelope[domain.MenuNode]{}, err
	}
	for i := range list.Data.Items {
		if list.Data.Items[i].URL == path {
			return c.Menu(ctx, list.Data.Items[i].ID)
		}
	}
	return domain.Envelope[domain.MenuNode]{}, wrapError("findMenuByURL", path, ErrNotFound)
}
