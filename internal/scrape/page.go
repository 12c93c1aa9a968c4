package scrape

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/JakeFAU/fashion-etl/internal/product"
)

// Selectors for the storefront's listing markup.
const (
	cardSelector    = "div.collection-card"
	imageSelector   = "img.collection-image"
	titleSelector   = "h3.product-title"
	priceSelector   = "span.price"
	detailsSelector = "div.product-details p"
)

// Detail line prefixes.
const (
	ratingKey = "Rating:"
	colorsKey = "Colors"
	sizeKey   = "Size:"
	genderKey = "Gender:"
)

// ExtractProducts decodes one listing page. Cards without a title are dropped.
// A document that cannot be read yields no records and is logged.
func ExtractProducts(r io.Reader, logger *zap.Logger) []product.RawProduct {
	if logger == nil {
		logger = zap.NewNop()
	}
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		logger.Error("Error parsing HTML content", zap.Error(fmt.Errorf("parse listing page: %w", err)))
		return nil
	}

	var products []product.RawProduct
	doc.Find(cardSelector).Each(func(_ int, card *goquery.Selection) {
		p := parseCard(card)
		if title, ok := p.Title.Str(); ok && title != "" {
			products = append(products, p)
		}
	})
	return products
}

func parseCard(card *goquery.Selection) product.RawProduct {
	var p product.RawProduct

	if img := card.Find(imageSelector).First(); img.Length() > 0 {
		p.ImageURL = product.Text(img.AttrOr("src", ""))
		p.ProductAlt = product.Text(img.AttrOr("alt", ""))
	}
	if title := card.Find(titleSelector).First(); title.Length() > 0 {
		p.Title = product.Text(strings.TrimSpace(title.Text()))
	}
	if price := card.Find(priceSelector).First(); price.Length() > 0 {
		p.Price = product.NumberIf(ParsePrice(price.Text()))
	}

	card.Find(detailsSelector).Each(func(_ int, line *goquery.Selection) {
		text := strings.TrimSpace(line.Text())
		switch {
		case strings.Contains(text, ratingKey):
			p.Rating = product.NumberIf(ParseRating(text))
		case strings.Contains(text, colorsKey):
			n, ok := ParseColors(text)
			p.Colors = product.NumberIf(float64(n), ok)
		case strings.Contains(text, sizeKey):
			p.Size = product.Text(strings.TrimSpace(strings.ReplaceAll(text, sizeKey, "")))
		case strings.Contains(text, genderKey):
			p.Gender = product.Text(strings.TrimSpace(strings.ReplaceAll(text, genderKey, "")))
		}
	})
	return p
}
