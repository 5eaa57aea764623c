package bot

import (
	"strconv"
	"strings"

	"storebot/internal/catalog"
)

// Action is the closed set of things a user can ask the bot to do.
type Action int

const (
	ActionUnknown Action = iota
	ActionStart
	ActionShowMenu
	ActionMainMenu
	ActionShowCart
	ActionSearch
	ActionSearchPrompt
	ActionListBrands
	ActionHelp
	ActionSelectCategory
	ActionPaginate
	ActionViewCar
	ActionAddCar
	ActionViewItem
	ActionAddItem
	ActionClearCart
	ActionCheckout
	ActionSupport
	ActionNoop
	ActionBackToCategory
	ActionText
)

var actionNames = map[Action]string{
	ActionUnknown:        "unknown",
	ActionStart:          "start",
	ActionShowMenu:       "show_menu",
	ActionMainMenu:       "main_menu",
	ActionShowCart:       "show_cart",
	ActionSearch:         "search",
	ActionSearchPrompt:   "search_prompt",
	ActionListBrands:     "list_brands",
	ActionHelp:           "help",
	ActionSelectCategory: "select_category",
	ActionPaginate:       "paginate",
	ActionViewCar:        "view_car",
	ActionAddCar:         "add_car",
	ActionViewItem:       "view_item",
	ActionAddItem:        "add_item",
	ActionClearCart:      "clear_cart",
	ActionCheckout:       "checkout",
	ActionSupport:        "support",
	ActionNoop:           "noop",
	ActionBackToCategory: "back_to_category",
	ActionText:           "text",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

// Event is a decoded command, button click or text message. Arg holds the search
// term, category key or product id depending on the action.
type Event struct {
	Action Action
	Arg    string
	Page   int
}

func Start() Event                        { return Event{Action: ActionStart} }
func ShowMenu() Event                     { return Event{Action: ActionShowMenu} }
func MainMenu() Event                     { return Event{Action: ActionMainMenu} }
func ShowCart() Event                     { return Event{Action: ActionShowCart} }
func Search(term string) Event            { return Event{Action: ActionSearch, Arg: term} }
func SearchPrompt() Event                 { return Event{Action: ActionSearchPrompt} }
func ListBrands() Event                   { return Event{Action: ActionListBrands} }
func Help() Event                         { return Event{Action: ActionHelp} }
func SelectCategory(key string) Event     { return Event{Action: ActionSelectCategory, Arg: key} }
func Paginate(key string, page int) Event { return Event{Action: ActionPaginate, Arg: key, Page: page} }
func ViewCar(id string) Event             { return Event{Action: ActionViewCar, Arg: id} }
func AddCar(id string) Event              { return Event{Action: ActionAddCar, Arg: id} }
func ViewItem(id string) Event            { return Event{Action: ActionViewItem, Arg: id} }
func AddItem(id string) Event             { return Event{Action: ActionAddItem, Arg: id} }
func ClearCart() Event                    { return Event{Action: ActionClearCart} }
func Checkout() Event                     { return Event{Action: ActionCheckout} }
func Support() Event                      { return Event{Action: ActionSupport} }
func Noop() Event                         { return Event{Action: ActionNoop} }
func BackToCategory() Event               { return Event{Action: ActionBackToCategory} }
func TextEvent() Event                    { return Event{Action: ActionText} }

// Callback payload verbs. A payload is "verb" or "verb:arg"; the page verb carries
// "key:page".
const (
	verbMenu     = "menu"
	verbCart     = "cart"
	verbSearch   = "search"
	verbCategory = "cat"
	verbPage     = "page"
	verbCar      = "car"
	verbAddCar   = "addcar"
	verbItem     = "item"
	verbAddItem  = "additem"
	verbClear    = "clear"
	verbCheckout = "checkout"
	verbSupport  = "support"
	verbNoop     = "noop"
	verbBack     = "back"
)

// MaxCallbackData is the most bytes Telegram accepts as button payload.
const MaxCallbackData = 64

// CallbackData encodes an event as button payload. Events that never come from a
// button encode as "". Product ids that would push the payload past
// MaxCallbackData are replaced by their catalog short ref.
func CallbackData(e Event) string {
	data := encodeCallback(e)
	if len(data) > MaxCallbackData && refersToProduct(e.Action) {
		e.Arg = catalog.ShortRef(e.Arg)
		data = encodeCallback(e)
	}
	return data
}

func refersToProduct(a Action) bool {
	switch a {
	case ActionViewCar, ActionAddCar, ActionViewItem, ActionAddItem:
		return true
	}
	return false
}

func encodeCallback(e Event) string {
	switch e.Action {
	case ActionMainMenu, ActionShowMenu:
		return verbMenu
	case ActionShowCart:
		return verbCart
	case ActionSearchPrompt:
		return verbSearch
	case ActionSelectCategory:
		return verbCategory + ":" + e.Arg
	case ActionPaginate:
		return verbPage + ":" + e.Arg + ":" + strconv.Itoa(e.Page)
	case ActionViewCar:
		return verbCar + ":" + e.Arg
	case ActionAddCar:
		return verbAddCar + ":" + e.Arg
	case ActionViewItem:
		return verbItem + ":" + e.Arg
	case ActionAddItem:
		return verbAddItem + ":" + e.Arg
	case ActionClearCart:
		return verbClear
	case ActionCheckout:
		return verbCheckout
	case ActionSupport:
		return verbSupport
	case ActionNoop:
		return verbNoop
	case ActionBackToCategory:
		return verbBack
	default:
		return ""
	}
}

// ParseCallback decodes a button payload. Anything malformed is ActionUnknown.
func ParseCallback(data string) Event {
	verb, arg, hasArg := strings.Cut(data, ":")

	if !hasArg {
		switch verb {
		case verbMenu:
			return MainMenu()
		case verbCart:
			return ShowCart()
		case verbSearch:
			return SearchPrompt()
		case verbClear:
			return ClearCart()
		case verbCheckout:
			return Checkout()
		case verbSupport:
			return Support()
		case verbNoop:
			return Noop()
		case verbBack:
			return BackToCategory()
		}
		return Event{Action: ActionUnknown, Arg: data}
	}

	if arg == "" {
		return Event{Action: ActionUnknown, Arg: data}
	}

	switch verb {
	case verbCategory:
		return SelectCategory(arg)
	case verbPage:
		i := strings.LastIndex(arg, ":")
		if i <= 0 {
			break
		}
		page, err := strconv.Atoi(arg[i+1:])
		if err != nil || page < 0 {
			break
		}
		return Paginate(arg[:i], page)
	case verbCar:
		return ViewCar(arg)
	case verbAddCar:
		return AddCar(arg)
	case verbItem:
		return ViewItem(arg)
	case verbAddItem:
		return AddItem(arg)
	}
	return Event{Action: ActionUnknown, Arg: data}
}

// ParseCommand decodes a slash command (without the slash) and its arguments.
func ParseCommand(command, args string) Event {
	switch strings.ToLower(command) {
	case "start":
		return Start()
	case "menu":
		return ShowMenu()
	case "cart":
		return ShowCart()
	case "search":
		term := strings.TrimSpace(args)
		if term == "" {
			return SearchPrompt()
		}
		return Search(term)
	case "brands":
		return ListBrands()
	case "help":
		return Help()
	}
	return Event{Action: ActionUnknown, Arg: command}
}
