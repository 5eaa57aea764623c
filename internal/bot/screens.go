package bot

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"storebot/internal/catalog"
)

// Button is one inline keyboard button. Exactly one of Data and URL is set.
type Button struct {
	Text string
	Data string
	URL  string
}

// Screen is a message body plus its inline keyboard, independent of the transport.
type Screen struct {
	Text     string
	Keyboard [][]Button
}

const (
	PageSize       = 10
	maxSearchLines = 10
	maxSearchKeys  = 5
	maxBrands      = 20

	storeSite    = "csr2mod.com"
	menuText     = "🏎️ CSR2 MODS STORE - Choose a category:"
	supportURL   = "https://t.me/csr2mods"
	websiteURL   = "https://csr2mod.com"
	emptyCartMsg = "🛒 Your cart is empty\n\n🏎️ Start shopping for CSR2 cars, mods, and services!\n\nVisit our categories to find what you need."
)

func button(text string, e Event) Button {
	return Button{Text: text, Data: CallbackData(e)}
}

func linkButton(text, url string) Button {
	return Button{Text: text, URL: url}
}

func backAndCartRow(back Event, backText string) []Button {
	return []Button{button(backText, back), button("🛒 View Cart", ShowCart())}
}

func mainMenuKeyboard(webAppURL string) [][]Button {
	return [][]Button{
		{button("🏆 LUXURY CARS", SelectCategory("csr2_cars_luxury")), button("🏁 SPORTS CARS", SelectCategory("csr2_cars_sports"))},
		{button("🇺🇸 AMERICAN CARS", SelectCategory("csr2_cars_american")), button("🇯🇵 JAPANESE CARS", SelectCategory("csr2_cars_japanese"))},
		{button("🏎️ ALL CARS", SelectCategory("csr2_cars_all")), button("🔍 SEARCH CARS", SearchPrompt())},
		{button("💰 TOP UPS", SelectCategory("csr2_topups")), button("📦 PACKS", SelectCategory("csr2_topup_packs"))},
		{button("👑 VIP PACKS", SelectCategory("csr2_vip_packs")), button("🔧 SERVICES", SelectCategory("csr2_services"))},
		{button("👤 ACCOUNTS", SelectCategory("csr2_accounts")), button("🛒 View Cart", ShowCart())},
		{linkButton("🌐 WebApp Store", strings.TrimRight(webAppURL, "/")+"/webapp"), button("💬 Support", Support())},
	}
}

func cartKeyboard() [][]Button {
	return [][]Button{
		{button("🗑️ Clear Cart", ClearCart()), button("✅ Checkout", Checkout())},
		{button("⬅️ Back to Menu", MainMenu()), button("💬 Support", Support())},
	}
}

func productButton(p catalog.Product) Button {
	label := p.Name + " - " + p.Price.String()
	if p.IsCar() {
		return button(label, ViewCar(p.ID))
	}
	return button(label, ViewItem(p.ID))
}

func welcomeScreen(firstName string, cars int, webAppURL string) *Screen {
	text := fmt.Sprintf(`🏎️ Welcome to CSR2 MODS STORE!

Hello %s! 👋

🌐 Official Store: %s

We have %s+ premium CSR2 cars and services available:

🏆 Luxury supercars (Bugatti, McLaren, Ferrari)
🏁 High-performance sports cars
🇺🇸 Iconic American muscle cars
🇯🇵 Japanese performance legends
💰 Gold & Cash packages
👑 VIP memberships & services

Select a category to start shopping:`, firstName, storeSite, humanize.Comma(int64(cars)))

	return &Screen{Text: text, Keyboard: mainMenuKeyboard(webAppURL)}
}

func textWelcomeScreen(cars int, webAppURL string) *Screen {
	text := fmt.Sprintf("🏎️ Welcome to CSR2 MODS STORE!\n\n🌐 %s\n\nWe have %s+ premium CSR2 cars available!\n\nUse /menu to browse categories or /search [term] to find specific cars! 🏁",
		storeSite, humanize.Comma(int64(cars)))
	return &Screen{Text: text, Keyboard: mainMenuKeyboard(webAppURL)}
}

func menuScreen(webAppURL string) *Screen {
	return &Screen{Text: menuText, Keyboard: mainMenuKeyboard(webAppURL)}
}

func helpScreen(cars int) *Screen {
	n := humanize.Comma(int64(cars))
	text := fmt.Sprintf(`🤖 CSR2 MODS STORE Bot Help

🌐 Website: %s

Available commands:
/start - Main menu with %s+ cars
/menu - Browse all categories
/cart - View your shopping cart
/search [term] - Search for specific cars
/brands - View all available car brands
/help - Show this help message

📱 How to order:
1️⃣ Choose a category or search for cars
2️⃣ Select items you want to purchase
3️⃣ Review your cart
4️⃣ Proceed to checkout

🔐 We offer:
✅ %s+ premium CSR2 cars
✅ Instant delivery for digital items
✅ Professional customer support
✅ Money-back guarantee

Need help? Use the Support button in the menu!`, storeSite, n, n)

	return &Screen{Text: text}
}

func supportScreen() *Screen {
	text := `💬 CSR2 MODS STORE Support

🌐 Website: csr2mod.com
📧 Email: support@csr2mod.com
💬 Telegram: @csr2mods

⏰ Support Hours:
📅 Monday - Friday: 9:00 AM - 11:00 PM (EST)
📅 Saturday - Sunday: 10:00 AM - 8:00 PM (EST)

🔥 Quick Help:
• Order status and delivery
• Payment assistance
• Technical support
• Account issues
• Custom requests

📱 For urgent issues, contact us directly on Telegram.

🔒 We guarantee:
✅ Safe transactions
✅ Quick delivery
✅ Professional support
✅ Money-back guarantee`

	return &Screen{Text: text, Keyboard: [][]Button{
		{linkButton("🌐 Visit Website", websiteURL), linkButton("💬 Contact Support", supportURL)},
		{button("⬅️ Back to Menu", MainMenu())},
	}}
}

func searchPromptScreen() *Screen {
	return &Screen{
		Text:     "🔍 Search for CSR2 Cars\n\nSend me a search term like:\n• Brand name (Bugatti, McLaren)\n• Car model (Chiron, 720S)\n• Type (supercar, sports car)\n\nExample: /search Bugatti",
		Keyboard: [][]Button{{button("⬅️ Back to Menu", MainMenu())}},
	}
}

func searchResultsScreen(term string, results []catalog.Product) *Screen {
	if len(results) == 0 {
		return &Screen{Text: fmt.Sprintf("🔍 No cars found for %q\n\nTry searching for:\n• Brand names (Bugatti, McLaren, etc.)\n• Car models (Chiron, 720S, etc.)\n• General terms (supercar, sports, etc.)", term)}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🔍 Found %d cars for %q:\n\n", len(results), term)
	for i, car := range results {
		if i == maxSearchLines {
			break
		}
		fmt.Fprintf(&b, "%d. %s - %s\n", i+1, car.Name, car.Price)
	}
	if len(results) > maxSearchLines {
		fmt.Fprintf(&b, "\n... and %d more cars", len(results)-maxSearchLines)
	}

	var keyboard [][]Button
	for i, car := range results {
		if i == maxSearchKeys {
			break
		}
		keyboard = append(keyboard, []Button{productButton(car)})
	}
	keyboard = append(keyboard, []Button{button("🔍 Search Again", SearchPrompt()), button("⬅️ Back to Menu", MainMenu())})

	return &Screen{Text: strings.TrimRight(b.String(), "\n"), Keyboard: keyboard}
}

func brandsScreen(idx *catalog.Index) *Screen {
	brands := idx.Brands()
	if len(brands) > maxBrands {
		brands = brands[:maxBrands]
	}

	var b strings.Builder
	b.WriteString("🏭 Available Car Brands:\n\n")
	for i, brand := range brands {
		fmt.Fprintf(&b, "%d. %s (%d cars)\n", i+1, brand, len(idx.ByBrand(brand)))
	}

	return &Screen{
		Text:     strings.TrimRight(b.String(), "\n"),
		Keyboard: [][]Button{{button("🔍 Search by Brand", SearchPrompt()), button("⬅️ Back to Menu", MainMenu())}},
	}
}

// pageView is one page of a category listing.
type pageView struct {
	Items   []catalog.Product
	Start   int // zero-based index of the first item
	Total   int
	HasPrev bool
	HasNext bool
}

// pageOf slices products into pages of PageSize. A page past the end is empty.
func pageOf(products []catalog.Product, page int) pageView {
	if page < 0 {
		page = 0
	}
	v := pageView{Start: page * PageSize, Total: len(products), HasPrev: page > 0}
	if v.Start >= len(products) {
		return v
	}
	end := min(v.Start+PageSize, len(products))
	v.Items = products[v.Start:end]
	v.HasNext = end < len(products)
	return v
}

func categoryScreen(cat catalog.Category, products []catalog.Product, page int, prompt string) *Screen {
	v := pageOf(products, page)

	var keyboard [][]Button
	for _, p := range v.Items {
		keyboard = append(keyboard, []Button{productButton(p)})
	}

	var nav []Button
	if v.HasPrev {
		nav = append(nav, button("⬅️ Previous", Paginate(cat.Key, page-1)))
	}
	if v.HasNext {
		nav = append(nav, button("Next ➡️", Paginate(cat.Key, page+1)))
	}
	if len(nav) > 0 {
		keyboard = append(keyboard, nav)
	}

	status := fmt.Sprintf("📊 Showing 0 of %d", v.Total)
	if len(v.Items) > 0 {
		status = fmt.Sprintf("📊 Showing %d-%d of %d", v.Start+1, v.Start+len(v.Items), v.Total)
	}
	keyboard = append(keyboard, []Button{button(status, Noop())})
	keyboard = append(keyboard, backAndCartRow(MainMenu(), "⬅️ Back to Menu"))

	return &Screen{Text: cat.Name + "\n\n" + prompt, Keyboard: keyboard}
}

func carScreen(car catalog.Product) *Screen {
	var b strings.Builder
	fmt.Fprintf(&b, "🏎️ %s\n\n🏭 Brand: %s\n📝 %s\n\n💰 Price: %s\n\n", car.Name, car.Brand, car.Description, car.Price)
	b.WriteString("🚚 Digital delivery - Instant\n🔒 Safe & secure transaction\n")
	if len(car.Variants) > 0 {
		colors := make([]string, 0, len(car.Variants))
		for _, v := range car.Variants {
			colors = append(colors, v.Color)
		}
		fmt.Fprintf(&b, "\n🎨 Available colors: %s\n", strings.Join(colors, ", "))
	}
	if car.Price.IsContact() {
		b.WriteString("\n📞 Contact support for custom pricing")
	} else {
		b.WriteString("\nWould you like to add this car to your cart?")
	}

	return &Screen{Text: b.String(), Keyboard: [][]Button{
		{button("🛒 Add to Cart", AddCar(car.ID))},
		backAndCartRow(BackToCategory(), "⬅️ Back"),
	}}
}

func itemScreen(item catalog.Product) *Screen {
	price := catalog.ContactNote
	closing := "📞 Contact support for custom pricing"
	if amount, ok := item.Price.Amount(); ok {
		price = amount.StringFixed(2)
		closing = "Would you like to add this to your cart?"
	}

	text := fmt.Sprintf("🎮 %s\n\n📝 %s\n\n💰 Price: %s\n\n🚚 Digital delivery (instant for most items)\n🔒 Safe & secure transaction\n\n%s",
		item.Name, item.Description, price, closing)

	return &Screen{Text: text, Keyboard: [][]Button{
		{button("🛒 Add to Cart", AddItem(item.ID))},
		backAndCartRow(BackToCategory(), "⬅️ Back"),
	}}
}

// FormatCart renders a cart: numbered lines with prices, a subtotal when any
// item has a fixed price and a note when any item needs a quote.
func FormatCart(cart []catalog.Product) string {
	if len(cart) == 0 {
		return emptyCartMsg
	}

	var b strings.Builder
	b.WriteString("🛒 Your CSR2 MODS Cart:\n\n")

	total := decimal.Zero
	var hasFixed, hasContact bool
	for i, item := range cart {
		fmt.Fprintf(&b, "%d. %s\n   💰 %s\n\n", i+1, item.Name, item.Price)
		if amount, ok := item.Price.Amount(); ok {
			total = total.Add(amount)
			hasFixed = true
		} else {
			hasContact = true
		}
	}

	if hasFixed {
		fmt.Fprintf(&b, "💳 Subtotal: %s\n", total.StringFixed(2))
	}
	if hasContact {
		b.WriteString("📞 Some items require contact for pricing")
	}
	return strings.TrimRight(b.String(), "\n")
}

func cartScreen(cart []catalog.Product) *Screen {
	return &Screen{Text: FormatCart(cart), Keyboard: cartKeyboard()}
}

func confirmationScreen(orderID, summary string) *Screen {
	text := fmt.Sprintf(`✅ Order Confirmed!

Thank you for choosing CSR2 MODS STORE!

%s

📞 Next Steps:
• Our team will process your order
• Digital items: Instant delivery
• Account services: 1-24 hours
• We'll contact you via Telegram

🔒 Payment Instructions:
Our support team will send you secure payment details shortly.

Order ID: #%s
🌐 %s`, summary, orderID, storeSite)

	return &Screen{Text: text, Keyboard: [][]Button{
		{button("🏎️ Shop Again", MainMenu()), button("💬 Support", Support())},
	}}
}
