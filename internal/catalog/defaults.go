package catalog

// Default returns the built-in melon list used when no other source is
// configured.
func Default() []Melon {
	return []Melon{
		{ID: "cas", CommonName: "Casaba", PriceCents: 250, ImageURL: "/static/img/casaba.jpg", Color: "yellow", Seedless: false},
		{ID: "cren", CommonName: "Crenshaw", PriceCents: 200, ImageURL: "/static/img/crenshaw.jpg", Color: "green", Seedless: false},
		{ID: "hone", CommonName: "Honeydew", PriceCents: 99, ImageURL: "/static/img/honeydew.jpg", Color: "green", Seedless: false},
		{ID: "musk", CommonName: "Muskmelon", PriceCents: 175, ImageURL: "/static/img/muskmelon.jpg", Color: "orange", Seedless: false},
		{ID: "ogen", CommonName: "Ogen", PriceCents: 325, ImageURL: "/static/img/ogen.jpg", Color: "green", Seedless: false},
		{ID: "sant", CommonName: "Santa Claus", PriceCents: 300, ImageURL: "/static/img/santa-claus.jpg", Color: "green", Seedless: false},
		{ID: "ww", CommonName: "Winter Watermelon", PriceCents: 450, ImageURL: "/static/img/winter-watermelon.jpg", Color: "red", Seedless: true},
		{ID: "yw", CommonName: "Yellow Watermelon", PriceCents: 400, ImageURL: "/static/img/yellow-watermelon.jpg", Color: "yellow", Seedless: true},
	}
}
