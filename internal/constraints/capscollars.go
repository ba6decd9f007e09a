package constraints

// ApplyCapsAndCollars clips a target price into the allowed movement band
// around the previous price: [prev*(1+collar), prev*(1+cap)] with collar < 0
// and cap > 0.
func ApplyCapsAndCollars(price, previousPrice, cap, collar float64) float64 {
	maxPrice := previousPrice * (1 + cap)
	minPrice := previousPrice * (1 + collar)

	if price > maxPrice {
		return maxPrice
	}
	if price < minPrice {
		return minPrice
	}
	return price
}
