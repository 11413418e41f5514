package client

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"

	"basler/crawler/internal/domain"
)

const mainCategorySelector = "li.nav-main__item.nav-main__item--level-2 > a.nav-main__item-link"

type navigationParser struct {
	origin   *url.URL
	excluded map[string]struct{}
	offset   int
	limit    int
}

func newNavigationParser(origin *url.URL, excluded []string, offset, limit int) *navigationParser {
	set := make(map[string]struct{}, len(excluded))
	for _, name := range excluded {
		set[cleanText(name)] = struct{}{}
	}

	return &navigationParser{
		origin:   origin,
		excluded: set,
		offset:   offset,
		limit:    limit,
	}
}

// ParseNavigation extracts main categories, their sub-categories and product-category links
// from the landing page. Missing markup yields an empty tree, not an error.
func (p *navigationParser) ParseNavigation(html string) ([]domain.MainCategory, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	anchors := p.window(doc.Find(mainCategorySelector))

	mainCategories := make([]domain.MainCategory, 0, anchors.Length())
	anchors.Each(func(i int, a *goquery.Selection) {
		name := cleanText(a.Text())
		if _, skip := p.excluded[name]; skip {
			log.Debugf("Skipping excluded main category %q", name)
			return
		}

		link, ok := p.link(a)
		if !ok {
			log.Warnf("⚠️ Main category %q has no usable href", name)
			return
		}

		mainCategories = append(mainCategories, domain.MainCategory{
			CategoryNode: domain.CategoryNode{
				Name:  name,
				Link:  link,
				Level: domain.LevelMain,
			},
			Subcategories: p.extractSubcategories(a),
		})
	})

	log.Debugf("Parsed %d main categories from navigation", len(mainCategories))
	return mainCategories, nil
}

func (p *navigationParser) window(anchors *goquery.Selection) *goquery.Selection {
	total := anchors.Length()

	start := min(max(p.offset, 0), total)
	end := total
	if p.limit > 0 {
		end = min(start+p.limit, total)
	}

	return anchors.Slice(start, end)
}

func (p *navigationParser) extractSubcategories(mainAnchor *goquery.Selection) []domain.SubCategory {
	subcategories := make([]domain.SubCategory, 0)

	mainAnchor.NextAllFiltered("ul").ChildrenFiltered("li").ChildrenFiltered("a").
		FilterFunction(func(_ int, a *goquery.Selection) bool {
			return a.ChildrenFiltered("span").Length() > 0
		}).
		Each(func(i int, a *goquery.Selection) {
			name := cleanText(a.ChildrenFiltered("span").Text())
			if isAllLabel(name) {
				return
			}

			link, ok := p.link(a)
			if !ok {
				log.Warnf("⚠️ Sub-category %q has no usable href", name)
				return
			}

			subcategories = append(subcategories, domain.SubCategory{
				CategoryNode: domain.CategoryNode{
					Name:  name,
					Link:  link,
					Level: domain.LevelSub,
				},
				ProductCategories: p.extractProductCategories(a),
			})
		})

	return subcategories
}

func (p *navigationParser) extractProductCategories(subAnchor *goquery.Selection) []domain.CategoryNode {
	nodes := make([]domain.CategoryNode, 0)

	subAnchor.NextAllFiltered("ul").ChildrenFiltered("li").ChildrenFiltered("a[href]").
		Each(func(i int, a *goquery.Selection) {
			link, ok := p.link(a)
			if !ok {
				return
			}

			nodes = append(nodes, domain.CategoryNode{
				Name:  cleanText(a.Text()),
				Link:  link,
				Level: domain.LevelProductCategory,
			})
		})

	return nodes
}

func (p *navigationParser) link(a *goquery.Selection) (string, bool) {
	href, exists := a.Attr("href")
	if !exists || strings.TrimSpace(href) == "" {
		return "", false
	}

	link, err := absolutize(p.origin, href)
	if err != nil {
		log.Warnf("⚠️ Skipping malformed href %q: %v", href, err)
		return "", false
	}
	return link, true
}

// isAllLabel reports whether a navigation label is an "All ..." catch-all entry.
func isAllLabel(name string) bool {
	for _, word := range strings.Fields(name) {
		if strings.EqualFold(word, "all") {
			return true
		}
	}
	return false
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
