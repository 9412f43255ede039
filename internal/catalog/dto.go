package catalog

const offerTypeBundle = "BUNDLE"

// feedResponse is the subset of the promotions feed the catalog consumes.
type feedResponse struct {
	Data struct {
		Catalog struct {
			SearchStore struct {
				Elements []feedElement `json:"elements"`
			} `json:"searchStore"`
		} `json:"Catalog"`
	} `json:"data"`
}

type feedElement struct {
	Title         string         `json:"title"`
	Namespace     string         `json:"namespace"`
	OfferType     string         `json:"offerType"`
	ProductSlug   string         `json:"productSlug"`
	OfferMappings []offerMapping `json:"offerMappings"`
	Price         struct {
		TotalPrice struct {
			OriginalPrice int64 `json:"originalPrice"`
			DiscountPrice int64 `json:"discountPrice"`
		} `json:"totalPrice"`
	} `json:"price"`
	Promotions *struct {
		PromotionalOffers []promotionalOfferGroup `json:"promotionalOffers"`
	} `json:"promotions"`
}

type offerMapping struct {
	PageSlug string `json:"pageSlug"`
}

type promotionalOfferGroup struct {
	PromotionalOffers []promotionalOffer `json:"promotionalOffers"`
}

type promotionalOffer struct {
	DiscountSetting struct {
		DiscountPercentage int `json:"discountPercentage"`
	} `json:"discountSetting"`
}

// hasZeroDiscountOffer reports whether any entry of the first promotional
// offer group carries a zero discount percentage.
func (e feedElement) hasZeroDiscountOffer() bool {
	if e.Promotions == nil || len(e.Promotions.PromotionalOffers) == 0 {
		return false
	}
	for _, offer := range e.Promotions.PromotionalOffers[0].PromotionalOffers {
		if offer.DiscountSetting.DiscountPercentage == 0 {
			return true
		}
	}
	return false
}
