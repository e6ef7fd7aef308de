package client

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"pathscategories/resolver/internal/domain"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
)

// catString carries the whole id chain of a category, e.g. catString=332.124.316
var catStringRegex = regexp.MustCompile(`catString=([0-9][0-9.]*)`)

// parseCatalogTree reads category records out of a catalog tree page. Every link whose URL carries a
// catString becomes one record; its parent is the previous id in the chain. Links repeating an id that
// was already seen are skipped.
func parseCatalogTree(html string) ([]domain.CategoryRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	records := make([]domain.CategoryRecord, 0)
	seen := make(map[domain.CategoryID]bool)

	doc.Find("a[href*='catString=']").Each(func(i int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		name := strings.TrimSpace(link.Text())
		if name == "" {
			return
		}

		matches := catStringRegex.FindStringSubmatch(href)
		if len(matches) < 2 {
			return
		}

		chain, err := parseChain(matches[1])
		if err != nil {
			log.Warnf("Skipping catalog link %s: %v", href, err)
			return
		}

		id := chain[len(chain)-1]
		if seen[id] {
			return
		}
		seen[id] = true

		slug, ok := link.Attr("data-slug")
		if !ok || slug == "" {
			slug = slugify(name)
		}

		record := domain.CategoryRecord{
			ID:   id,
			Name: name,
			Slug: slug,
		}
		if len(chain) > 1 {
			record.Parent = &domain.ParentRef{ID: chain[len(chain)-2]}
		}
		records = append(records, record)
	})

	log.Debugf("Extracted %d categories from catalog tree", len(records))
	return records, nil
}

func parseChain(catString string) ([]domain.CategoryID, error) {
	parts := strings.Split(strings.Trim(catString, "."), ".")
	chain := make([]domain.CategoryID, 0, len(parts))
	for _, part := range parts {
		id, err := domain.ParseCategoryID(part)
		if err != nil {
			return nil, err
		}
		chain = append(chain, id)
	}
	return chain, nil
}

// slugify lowercases name and joins its letter and digit runs with dashes
func slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}
