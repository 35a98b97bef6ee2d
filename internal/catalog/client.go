// Package catalog fetches the product list from the Billz point-of-sale API
// and serves it through a TTL cache. The client authenticates lazily (one
// JWT per fetch), pages through the product list until an empty page, and
// keeps only products stocked in the configured shop.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/akbarovs/go-storefront-bot/internal/config"
)

const pageLimit = 100

// Product is the storefront view of a Billz product, reduced to the fields
// the web app and the cart need.
type Product struct {
	ID         string   `json:"id"`
	SKU        string   `json:"sku"`
	Name       string   `json:"name"`
	BrandName  string   `json:"brand_name"`
	Price      float64  `json:"price"`
	Qty        float64  `json:"qty"`
	ShopName   string   `json:"shop_name"`
	MainImage  string   `json:"main_image_url_full"`
	Photos     []string `json:"photos"`
	Categories []string `json:"categories"`
}

// InCategory reports whether the product belongs to the named category.
func (p Product) InCategory(name string) bool {
	for _, c := range p.Categories {
		if c == name {
			return true
		}
	}
	return false
}

// Billz wire types (only the fields we read).

type authResponse struct {
	Data struct {
		AccessToken string `json:"access_token"`
	} `json:"data"`
}

type productsResponse struct {
	Products []billzProduct `json:"products"`
}

type billzProduct struct {
	ID                    string `json:"id"`
	SKU                   string `json:"sku"`
	Name                  string `json:"name"`
	BrandName             string `json:"brand_name"`
	MainImageURLFull      string `json:"main_image_url_full"`
	ShopMeasurementValues []struct {
		ShopID                 string  `json:"shop_id"`
		Name                   string  `json:"name"`
		ShopName               string  `json:"shop_name"`
		ActiveMeasurementValue float64 `json:"active_measurement_value"`
	} `json:"shop_measurement_values"`
	ShopPrices []struct {
		ShopID         string  `json:"shop_id"`
		RetailPrice    float64 `json:"retail_price"`
		RetailCurrency string  `json:"retail_currency"`
	} `json:"shop_prices"`
	Photos []struct {
		PhotoURL string `json:"photo_url"`
	} `json:"photos"`
	Categories []struct {
		Name string `json:"name"`
	} `json:"categories"`
}

// Client talks to the Billz API. It holds no token state: every FetchAll
// call authenticates from scratch, which keeps the client trivially safe
// across token expiries.
type Client struct {
	http *resty.Client
	cfg  config.BillzConfig
	log  zerolog.Logger
}

// NewClient constructs a Billz client with a bounded request timeout.
func NewClient(cfg config.BillzConfig, log zerolog.Logger) *Client {
	return &Client{
		http: resty.New().SetTimeout(30 * time.Second),
		cfg:  cfg,
		log:  log.With().Str("component", "billz").Logger(),
	}
}

// authenticate exchanges the secret token for a JWT.
func (c *Client) authenticate(ctx context.Context) (string, error) {
	var out authResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetBody(map[string]string{"secret_token": c.cfg.SecretToken}).
		SetResult(&out).
		Post(c.cfg.AuthURL)
	if err != nil {
		return "", fmt.Errorf("billz auth: %w", err)
	}
	if resp.IsError() || out.Data.AccessToken == "" {
		return "", fmt.Errorf("billz auth: status %d", resp.StatusCode())
	}
	return out.Data.AccessToken, nil
}

// FetchAll authenticates, then pages through the Billz product list until an
// empty page, keeping only products with a stock record for the configured
// shop. The display price is that shop's UZS retail price, defaulting to 0
// when absent.
func (c *Client) FetchAll(ctx context.Context) ([]Product, error) {
	token, err := c.authenticate(ctx)
	if err != nil {
		return nil, err
	}

	var all []Product
	for page := 1; ; page++ {
		var out productsResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetHeader("Accept", "application/json").
			SetAuthToken(token).
			SetQueryParams(map[string]string{
				"page":  fmt.Sprintf("%d", page),
				"limit": fmt.Sprintf("%d", pageLimit),
			}).
			SetResult(&out).
			Get(c.cfg.ProductsURL)
		if err != nil {
			return nil, fmt.Errorf("billz products page %d: %w", page, err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("billz products page %d: status %d", page, resp.StatusCode())
		}
		if len(out.Products) == 0 {
			break
		}

		kept := 0
		for _, bp := range out.Products {
			p, ok := c.convert(bp)
			if !ok {
				continue
			}
			all = append(all, p)
			kept++
		}
		c.log.Debug().Int("page", page).Int("kept", kept).Msg("billz page fetched")
	}

	c.log.Info().Int("products", len(all)).Msg("billz catalog fetched")
	return all, nil
}

// convert maps a Billz product to the storefront shape, dropping products
// not stocked in the configured shop.
func (c *Client) convert(bp billzProduct) (Product, bool) {
	var shopName string
	var stock float64
	found := false
	for _, sm := range bp.ShopMeasurementValues {
		if sm.ShopID == c.cfg.ShopID {
			shopName = sm.ShopName
			stock = sm.ActiveMeasurementValue
			found = true
			break
		}
	}
	if !found {
		return Product{}, false
	}

	var price float64
	for _, sp := range bp.ShopPrices {
		if sp.ShopID == c.cfg.ShopID && sp.RetailCurrency == "UZS" {
			price = sp.RetailPrice
			break
		}
	}

	photos := make([]string, 0, len(bp.Photos))
	for _, ph := range bp.Photos {
		photos = append(photos, ph.PhotoURL)
	}
	categories := make([]string, 0, len(bp.Categories))
	for _, ct := range bp.Categories {
		categories = append(categories, ct.Name)
	}

	name := bp.Name
	if name == "" {
		name = "Без названия"
	}
	brand := bp.BrandName
	if brand == "" {
		brand = "Неизвестный бренд"
	}
	if shopName == "" {
		shopName = "Unknown Shop"
	}

	return Product{
		ID:         bp.ID,
		SKU:        bp.SKU,
		Name:       name,
		BrandName:  brand,
		Price:      price,
		Qty:        stock,
		ShopName:   shopName,
		MainImage:  bp.MainImageURLFull,
		Photos:     photos,
		Categories: categories,
	}, true
}
