package model

// CartItem mirrors OrderItem but lives in the mutable pre-order cart.
type CartItem struct {
	DishID   string  `json:"dish_id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Cart is one user's in-progress selection from a single restaurant.
type Cart struct {
	UserID       string     `json:"user_id"`
	RestaurantID string     `json:"restaurant_id"`
	Items        []CartItem `json:"items"`
}

// Add merges the dish into the cart, bumping quantity if it is already
// there. The price is captured at add time.
func (c *Cart) Add(d Dish, quantity int) {
	for i := range c.Items {
		if c.Items[i].DishID == d.ID {
			c.Items[i].Quantity += quantity
			return
		}
	}
	c.Items = append(c.Items, CartItem{DishID: d.ID, Name: d.Name, Price: d.Price, Quantity: quantity})
}

func (c *Cart) Total() float64 {
	var total float64
	for _, it := range c.Items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}

// OrderItems converts the cart contents into order line items.
func (c *Cart) OrderItems() []OrderItem {
	out := make([]OrderItem, 0, len(c.Items))
	for _, it := range c.Items {
		out = append(out, OrderItem{DishID: it.DishID, Name: it.Name, Price: it.Price, Quantity: it.Quantity})
	}
	return out
}
