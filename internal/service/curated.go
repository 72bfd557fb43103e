package service

import (
	"fmt"
	"net/url"
	"strings"
)

// CuratedDupe is a hand-picked alternative to a well-known product
type CuratedDupe struct {
	Name            string
	Brand           string
	Price           float64
	ImageURL        string
	Similarity      int
	IngredientMatch int
	ColorMatch      int
	FinishMatch     int
}

type curatedEntry struct {
	matches func(lowerQuery string) bool
	dupes   []CuratedDupe
}

// CuratedCatalog answers chat queries for popular products when the store
// has no candidates of its own.
type CuratedCatalog struct {
	entries []curatedEntry
}

func NewCuratedCatalog() *CuratedCatalog {
	return &CuratedCatalog{entries: defaultCuratedEntries()}
}

// Lookup returns chat products for the first entry matching query
func (c *CuratedCatalog) Lookup(query string) []ChatProduct {
	lower := strings.ToLower(query)
	for _, entry := range c.entries {
		if !entry.matches(lower) {
			continue
		}
		out := make([]ChatProduct, 0, len(entry.dupes))
		for i, d := range entry.dupes {
			price := d.Price
			out = append(out, ChatProduct{
				ID:              fmt.Sprintf("curated-%d", i+1),
				Name:            d.Name,
				Brand:           d.Brand,
				Price:           &price,
				ImageURL:        d.ImageURL,
				Link:            "https://www.google.com/search?q=" + url.QueryEscape(d.Brand+" "+d.Name),
				SimilarityScore: d.Similarity,
				IngredientMatch: d.IngredientMatch,
				ColorMatch:      d.ColorMatch,
				FinishMatch:     d.FinishMatch,
				Source:          ChatSourceCurated,
			})
		}
		return out
	}
	return nil
}

func containsAny(s string, parts ...string) bool {
	for _, p := range parts {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func defaultCuratedEntries() []curatedEntry {
	return []curatedEntry{
		{
			matches: func(q string) bool {
				return strings.Contains(q, "lip") && containsAny(q, "charlotte tilbury", "pillow talk")
			},
			dupes: []CuratedDupe{
				{Name: "Super Stay Ink Crayon - Lead The Way", Brand: "Maybelline", Price: 11.99, Similarity: 92, IngredientMatch: 84, ColorMatch: 91, FinishMatch: 88,
					ImageURL: "https://www.maybelline.com/~/media/mny/us/makeup-tips/new-2020-nav/lipstick_0000_lip-ink-crayon.jpg"},
				{Name: "Retro Matte Lipstick - Mehr", Brand: "MAC", Price: 21.00, Similarity: 89, IngredientMatch: 81, ColorMatch: 90, FinishMatch: 92,
					ImageURL: "https://www.maccosmetics.com/media/export/cms/products/640x600/mac_sku_MT7A01_640x600_0.jpg"},
				{Name: "Powder Kiss Lipstick - Mull It Over", Brand: "MAC", Price: 23.00, Similarity: 88, IngredientMatch: 80, ColorMatch: 88, FinishMatch: 86,
					ImageURL: "https://www.maccosmetics.com/media/export/cms/products/640x600/mac_sku_S7H901_640x600_0.jpg"},
				{Name: "Lux Lipstick - Still Crazy", Brand: "ColourPop", Price: 10.00, Similarity: 86, IngredientMatch: 78, ColorMatch: 87, FinishMatch: 85,
					ImageURL: "https://cdn.shopify.com/s/files/1/1338/0845/products/still-crazy_a_800x1200.jpg"},
				{Name: "Soft Matte Lip Cream - Stockholm", Brand: "NYX", Price: 7.00, Similarity: 85, IngredientMatch: 76, ColorMatch: 86, FinishMatch: 84,
					ImageURL: "https://www.nyxcosmetics.com/dw/image/v2/AANG_PRD/on/demandware.static/-/Sites-cpd-nyxusa-master-catalog/default/dw35bb22bc/ProductImages/2016/Lips/Soft_Matte_Lip_Cream/softmattelipcream_main.jpg"},
			},
		},
		{
			matches: func(q string) bool {
				return strings.Contains(q, "dior") && strings.Contains(q, "lip oil")
			},
			dupes: []CuratedDupe{
				{Name: "Oil Infusion Lip Tint", Brand: "Clarins", Price: 26.00, Similarity: 95, IngredientMatch: 88, ColorMatch: 92, FinishMatch: 93,
					ImageURL: "https://www.clarinsusa.com/dw/image/v2/AANG_PRD/on/demandware.static/-/Sites-clarins-master-catalog/default/dwd7d76a01/images/full-size/80060740_1.jpg"},
				{Name: "Glow Reviver Lip Oil", Brand: "Merit", Price: 24.00, Similarity: 93, IngredientMatch: 86, ColorMatch: 90, FinishMatch: 91,
					ImageURL: "https://www.meritbeauty.com/cdn/shop/files/Merit-Shade-Slick-Marrakech-1_1600x.jpg"},
				{Name: "Lip Comfort Oil", Brand: "Kosas", Price: 22.00, Similarity: 91, IngredientMatch: 84, ColorMatch: 89, FinishMatch: 90,
					ImageURL: "https://www.kosas.com/cdn/shop/products/KOS_WET_LCO_FRNT_UNVRNSH_1080_bbe1eef8-ab22-4f31-8d4d-ab71ebc3d8b0_grande.jpg"},
				{Name: "Lifter Gloss Lip Gloss", Brand: "Maybelline", Price: 9.99, Similarity: 89, IngredientMatch: 79, ColorMatch: 88, FinishMatch: 87,
					ImageURL: "https://www.maybelline.com/~/media/mny/us/lip-makeup/lip-gloss/lifter-gloss/maybelline-lifter-gloss-moon_pack-shot.jpg"},
				{Name: "Lip Oil", Brand: "e.l.f.", Price: 6.00, Similarity: 86, IngredientMatch: 77, ColorMatch: 86, FinishMatch: 85,
					ImageURL: "https://images.elfcosmetics.com/image/upload/dpr_2.0,f_auto,q_auto,w_950/elf_cosmetics/Lip_Oil_Styled_w-cap_WEB.jpg"},
			},
		},
		{
			matches: func(q string) bool {
				return strings.Contains(q, "huda beauty") && strings.Contains(q, "setting powder")
			},
			dupes: []CuratedDupe{
				{Name: "Fit Me Loose Finishing Powder", Brand: "Maybelline", Price: 8.99, Similarity: 90, IngredientMatch: 85, FinishMatch: 89,
					ImageURL: "https://www.maybelline.com/~/media/mny/us/face-makeup/powder/fit-me-loose-finishing-powder/maybelline-fit-me-loose-finishing-powder-fair-light-pack-shot.jpg"},
				{Name: "Airspun Loose Face Powder", Brand: "Coty", Price: 6.97, Similarity: 88, IngredientMatch: 80, FinishMatch: 86,
					ImageURL: "https://m.media-amazon.com/images/I/61s0zM0eIKL._SL1500_.jpg"},
				{Name: "HD Pro Finishing Powder", Brand: "NYX", Price: 10.00, Similarity: 87, IngredientMatch: 82, FinishMatch: 85,
					ImageURL: "https://www.nyxcosmetics.com/dw/image/v2/AANG_PRD/on/demandware.static/-/Sites-cpd-nyxusa-master-catalog/default/dw96225339/ProductImages/Face/HD_Finishing_Powder/800897822927_hdfinishingpowder_translucent_main.jpg"},
				{Name: "No-Sebum Mineral Powder", Brand: "Innisfree", Price: 11.00, Similarity: 86, IngredientMatch: 78, FinishMatch: 84,
					ImageURL: "https://www.innisfree.com/us/en/resource/image/2022/06/5g_NoSebumMineralPowder-1_217-1.jpg"},
				{Name: "Loose Setting Powder", Brand: "e.l.f.", Price: 6.00, Similarity: 85, IngredientMatch: 77, FinishMatch: 82,
					ImageURL: "https://www.elfcosmetics.com/dw/image/v2/BBXC_PRD/on/demandware.static/-/Sites-elf-master/default/dw86fd227c/2022/96110_LSP_LTRAN_WEB_2.jpg"},
			},
		},
	}
}
