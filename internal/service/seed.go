package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

const imageBase = "https://res.cloudinary.com/da52uzyjk/image/upload/"

type seedProduct struct {
	image, name, category, parent string
	current, original             int64
	discount                      int
	rating                        float64
	reviews                       int
	description                   string
	tags                          []string
}

var catalogSeed = []seedProduct{
	{image: "v1770996569/bestSelling1_vkc13p.png", name: "The north coat", current: 260, original: 360, rating: 5, reviews: 65,
		description: "Warm insulated coat with water-resistant fabric and an adjustable hood.", tags: []string{"best-selling"}},
	{image: "v1770996616/bestSelling2_nee8fl.png", name: "Gucci duffle bag", current: 960, original: 1160, rating: 4, reviews: 65,
		description: "Leather duffle bag with a spacious interior for travel or gym.", tags: []string{"best-selling"}},
	{image: "v1770996752/bestSelling3_weskrz.png", name: "RGB liquid CPU Cooler", current: 160, original: 170, rating: 4, reviews: 65,
		description: "240mm liquid cooler with RGB lighting.", tags: []string{"best-selling"}},
	{image: "v1770996868/flashSale1_rg1oza.png", name: "HAVIT HV-G92 Gamepad", current: 120, original: 160, discount: 40, rating: 5, reviews: 88,
		description: "Wired gamepad with dual vibration motors.", tags: []string{"flash-sale"}},
	{image: "v1770996868/flashSale2_cnpx8s.png", name: "AK-900 Wired Keyboard", current: 960, original: 1160, discount: 35, rating: 4, reviews: 75,
		description: "Mechanical keyboard with per-key backlight.", tags: []string{"flash-sale"}},
	{image: "v1770996869/flashSale3_i7ap4r.png", name: "IPS LCD Gaming Monitor", current: 370, original: 400, discount: 30, rating: 5, reviews: 99,
		description: "27 inch IPS panel with a 165Hz refresh rate.", tags: []string{"flash-sale"}},
	{image: "v1770996866/exploreProducts1_wmaln5.jpg", name: "Breed Dry Dog Food", current: 100, rating: 3, reviews: 35,
		description: "Balanced dry food for adult dogs.", tags: []string{"explore"}},
	{image: "v1770996867/exploreProducts3_dun3yu.png", name: "ASUS FHD Gaming Laptop", current: 700, rating: 5, reviews: 325,
		description: "15.6 inch FHD gaming laptop.", tags: []string{"explore"}},
	{image: "v1770996871/phone1_nb7rf9.png", name: "iPhone 14 Pro Max", category: "phones", current: 1099, original: 1299, rating: 5, reviews: 245,
		description: "6.7 inch smartphone with a 48MP main camera."},
	{image: "v1770996871/phone2_sktwcd.png", name: "Samsung Galaxy S23 Ultra", category: "phones", current: 999, rating: 5, reviews: 189,
		description: "Android flagship with a built-in stylus."},
	{image: "v1770996866/computer1_mbwe7v.webp", name: "MacBook Pro 16\"", category: "computers", current: 2399, original: 2599, rating: 5, reviews: 432,
		description: "16 inch laptop for professional workloads."},
	{image: "v1770996871/smartwatch1_nijqix.webp", name: "Apple Watch Series 9", category: "smartwatch", current: 399, original: 449, rating: 5, reviews: 567,
		description: "Smartwatch with health and fitness tracking."},
	{image: "v1770996866/camera2_g3d4pk.webp", name: "Sony Alpha A7 IV", category: "camera", current: 2498, original: 2698, rating: 5, reviews: 203,
		description: "Full-frame mirrorless camera."},
	{image: "v1770996869/headphones1_xxvnip.webp", name: "Sony WH-1000XM5", category: "headphones", current: 398, rating: 5, reviews: 892,
		description: "Noise cancelling wireless headphones."},
	{image: "v1770996869/gaming1_uels9j.webp", name: "PlayStation 5", category: "gaming", current: 499, rating: 5, reviews: 2341,
		description: "Home video game console."},
	{image: "v1770996870/powerBank1_xmhs3x.webp", name: "Anker PowerCore 20000mAh", category: "power-banks", parent: "portable-gadgets", current: 45, original: 60, rating: 5, reviews: 1256,
		description: "High capacity portable charger."},
	{image: "v1770996869/miniProjector1_j1puyj.webp", name: "XGIMI MoGo Pro Portable Projector", category: "mini-projectors", parent: "portable-gadgets", current: 499, original: 599, rating: 5, reviews: 456,
		description: "Pocket projector with 1080p output."},
	{image: "v1770996868/fitnessTracker1_ckjxyr.webp", name: "Fitbit Charge 6", category: "fitness-trackers", parent: "wearable-tech", current: 159, original: 179, rating: 5, reviews: 2341,
		description: "Fitness tracker with heart rate monitoring."},
	{image: "v1770996870/postureCorrector1_wid088.jpg", name: "UPRIGHT GO 2 Posture Trainer", category: "posture-correctors", parent: "wearable-tech", current: 79, original: 99, rating: 4, reviews: 892,
		description: "Wearable posture trainer with app feedback."},
}

// SeedProducts inserts the demo catalog. Products that already exist by name
// are left alone, so the command can be rerun.
func (s *CatalogService) SeedProducts(ctx context.Context) (int, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.seed")

	created := 0
	for _, sp := range catalogSeed {
		tags := sp.tags
		if tags == nil {
			tags = []string{}
		}
		p := &models.Product{
			Image:          imageBase + sp.image,
			Name:           sp.name,
			CurrentPrice:   decimal.NewFromInt(sp.current),
			OriginalPrice:  decimal.NewFromInt(sp.original),
			Discount:       sp.discount,
			Rating:         sp.rating,
			ReviewCount:    sp.reviews,
			Description:    sp.description,
			Category:       sp.category,
			ParentCategory: sp.parent,
			Tags:           tags,
		}
		ok, err := s.Repo.UpsertProductByName(ctx, p)
		if err != nil {
			return created, fmt.Errorf("seed %q: %w", sp.name, err)
		}
		if ok {
			created++
		}
	}

	l.Info("seed_done", "created", created, "total", len(catalogSeed))
	return created, nil
}
