package bot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storebot/internal/catalog"
)

func TestParseCallback(t *testing.T) {
	tests := []struct {
		data string
		want Event
	}{
		{"menu", MainMenu()},
		{"cart", ShowCart()},
		{"search", SearchPrompt()},
		{"cat:csr2_cars_luxury", SelectCategory("csr2_cars_luxury")},
		{"page:csr2_cars_all:3", Paginate("csr2_cars_all", 3)},
		{"car:csr2-bugatti-chiron", ViewCar("csr2-bugatti-chiron")},
		{"addcar:add_car_x", AddCar("add_car_x")},
		{"item:cash_5m", ViewItem("cash_5m")},
		{"additem:cash_5m", AddItem("cash_5m")},
		{"clear", ClearCart()},
		{"checkout", Checkout()},
		{"support", Support()},
		{"noop", Noop()},
		{"back", BackToCategory()},
	}
	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCallback(tt.data))
			assert.Equal(t, tt.data, CallbackData(tt.want))
		})
	}
}

func TestParseCallbackRejectsMalformed(t *testing.T) {
	for _, data := range []string{"", "bogus", "car:", "page:csr2_topups", "page:csr2_topups:-1", "page::2", "page:csr2_topups:x", "category_csr2_topups"} {
		t.Run(data, func(t *testing.T) {
			assert.Equal(t, ActionUnknown, ParseCallback(data).Action)
		})
	}
}

func TestPaginateKeysWithSeparators(t *testing.T) {
	e := ParseCallback(CallbackData(Paginate("odd:key_with_parts", 12)))
	assert.Equal(t, Paginate("odd:key_with_parts", 12), e)
}

func TestParseCommand(t *testing.T) {
	assert.Equal(t, Start(), ParseCommand("start", ""))
	assert.Equal(t, ShowMenu(), ParseCommand("menu", ""))
	assert.Equal(t, ShowCart(), ParseCommand("cart", ""))
	assert.Equal(t, ListBrands(), ParseCommand("brands", ""))
	assert.Equal(t, Help(), ParseCommand("HELP", ""))
	assert.Equal(t, Search("bugatti chiron"), ParseCommand("search", "  bugatti chiron "))
	assert.Equal(t, SearchPrompt(), ParseCommand("search", "   "))
	assert.Equal(t, ActionUnknown, ParseCommand("refund", "").Action)
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "add_car", ActionAddCar.String())
	assert.Equal(t, "unknown", Action(999).String())
}

func TestCallbackDataFitsTelegramLimit(t *testing.T) {
	handle := "csr2-" + strings.Repeat("lamborghini-aventador-svj-roadster-", 3)

	for _, ev := range []Event{ViewCar(handle), AddCar(handle), ViewItem(handle), AddItem(handle)} {
		t.Run(ev.Action.String(), func(t *testing.T) {
			data := CallbackData(ev)
			require.LessOrEqual(t, len(data), MaxCallbackData)

			back := ParseCallback(data)
			assert.Equal(t, ev.Action, back.Action)
			assert.Equal(t, catalog.ShortRef(handle), back.Arg)
		})
	}

	assert.Equal(t, "car:short-handle", CallbackData(ViewCar("short-handle")), "short ids are kept as-is")
}
