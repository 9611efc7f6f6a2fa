package cart

// Product is the catalog projection carried on a cart line. Owned by the
// remote commerce API; never mutated locally.
type Product struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Images     []string `json:"images,omitempty"`
	Brand      string   `json:"brand,omitempty"`
	SKU        string   `json:"sku,omitempty"`
	Categories []string `json:"categories,omitempty"`
	UnitPrice  int64    `json:"unit_price"` // minor units (paise)
}

type Variant struct {
	Name            string `json:"name"`
	Option          string `json:"option"`
	PriceAdjustment int64  `json:"price_adjustment"`
}

type Item struct {
	ItemID    string   `json:"item_id"`
	Product   Product  `json:"product"`
	Variant   *Variant `json:"selected_variant,omitempty"`
	Quantity  int      `json:"quantity"`
	ItemTotal int64    `json:"item_total"`
}

// UnitTotal is the effective per-unit price including the variant adjustment.
func (it Item) UnitTotal() int64 {
	if it.Variant != nil {
		return it.Product.UnitPrice + it.Variant.PriceAdjustment
	}
	return it.Product.UnitPrice
}

type Cart struct {
	Items        []Item `json:"items"`
	Subtotal     int64  `json:"subtotal"`
	Discount     int64  `json:"discount"`
	ShippingCost int64  `json:"shipping_cost"`
	Tax          int64  `json:"tax"`
	Total        int64  `json:"total"`
	Currency     string `json:"currency"`
}

// Recalculate enforces the cart money invariant:
//
//	subtotal = sum(quantity * (unit price + variant adjustment))
//	total    = subtotal - discount + shipping + tax
//
// Discount, shipping and tax are server-owned and left as-is; an optimistic
// local edit can only move quantities, so only subtotal and total follow.
func (c *Cart) Recalculate() {
	var subtotal int64
	for i := range c.Items {
		c.Items[i].ItemTotal = int64(c.Items[i].Quantity) * c.Items[i].UnitTotal()
		subtotal += c.Items[i].ItemTotal
	}
	c.Subtotal = subtotal
	c.Total = subtotal - c.Discount + c.ShippingCost + c.Tax
}

func (c Cart) IsEmpty() bool { return len(c.Items) == 0 }

// Clone deep-copies the cart so a snapshot cannot alias live item slices.
func (c Cart) Clone() Cart {
	out := c
	out.Items = make([]Item, len(c.Items))
	for i, it := range c.Items {
		cp := it
		if it.Variant != nil {
			v := *it.Variant
			cp.Variant = &v
		}
		cp.Product.Images = append([]string(nil), it.Product.Images...)
		cp.Product.Categories = append([]string(nil), it.Product.Categories...)
		out.Items[i] = cp
	}
	return out
}

func (c Cart) item(itemID string) (int, bool) {
	for i := range c.Items {
		if c.Items[i].ItemID == itemID {
			return i, true
		}
	}
	return -1, false
}
