package http

import (
	"github.com/ecobazaarx/ecobazaar/internal/domain"
	"github.com/ecobazaarx/ecobazaar/internal/service"
	"github.com/ecobazaarx/ecobazaar/pkg/api"
)

func toAPIAccount(a domain.Account) api.Account {
	out := api.Account{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		Role:      string(a.Role),
		IsActive:  a.IsActive,
		LastLogin: a.LastLogin,
		CreatedAt: a.CreatedAt,
	}
	if a.Customer != nil {
		out.Customer = &api.CustomerProfile{
			LoyaltyPoints:    a.Customer.LoyaltyPoints,
			CarbonSavedGrams: a.Customer.CarbonSavedGrams,
		}
	}
	if a.Seller != nil {
		out.Seller = &api.SellerProfile{
			BusinessName: a.Seller.BusinessName,
			BusinessType: a.Seller.BusinessType,
			Verified:     a.Seller.Verified,
		}
	}
	return out
}

func toAPIProduct(p domain.Product) api.Product {
	return api.Product{
		ID:          p.ID,
		SellerID:    p.SellerID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		PricePaise:  p.PricePaise,
		CarbonGrams: p.CarbonGrams,
		Stock:       p.Stock,
		Featured:    p.Featured,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
	}
}

func toAPICart(c domain.Cart) api.Cart {
	out := api.Cart{
		Items:            make([]api.CartItem, 0, len(c.Items)),
		TotalPaise:       c.TotalPaise,
		TotalCarbonGrams: c.TotalCarbonGrams,
	}
	for _, line := range c.Items {
		out.Items = append(out.Items, api.CartItem{
			Product: api.Product{
				ID:          line.ProductID,
				Name:        line.Name,
				PricePaise:  line.PricePaise,
				CarbonGrams: line.CarbonGrams,
				ImageURL:    line.ImageURL,
			},
			Quantity: line.Quantity,
		})
	}
	return out
}

func toAPIOrder(o domain.Order) api.Order {
	out := api.Order{
		ID:               o.ID,
		Status:           string(o.Status),
		Items:            make([]api.OrderItem, 0, len(o.Items)),
		TotalPaise:       o.TotalPaise,
		TotalCarbonGrams: o.TotalCarbonGrams,
		CreatedAt:        o.CreatedAt,
		PaidAt:           o.PaidAt,
	}
	for _, item := range o.Items {
		out.Items = append(out.Items, api.OrderItem{
			ProductID:   item.ProductID,
			Name:        item.Name,
			PricePaise:  item.PricePaise,
			CarbonGrams: item.CarbonGrams,
			Quantity:    item.Quantity,
		})
	}
	return out
}

func toAPIPaymentIntent(i service.PaymentIntent) api.PaymentIntent {
	return api.PaymentIntent{
		OrderID:    i.OrderID,
		UPIURI:     i.UPIURI,
		QRImageURL: i.QRImageURL,
		TotalPaise: i.TotalPaise,
	}
}
