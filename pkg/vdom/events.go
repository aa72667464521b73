package vdom

// EventHandler binds a DOM event to an intent. The browser client sends
// the intent (and its argument) back over the socket when the event fires;
// no server-side closure is attached to the node.
type EventHandler struct {
	Event  string // "click", ...
	Intent string // "navigate", "toggle", "login", "logout"
	Arg    string // optional intent argument, e.g. the target path
}

// event creates an EventHandler for the given DOM event.
func event(name, intent string, arg []string) EventHandler {
	h := EventHandler{Event: name, Intent: intent}
	if len(arg) > 0 {
		h.Arg = arg[0]
	}
	return h
}

// OnClick sends intent when the element is clicked.
func OnClick(intent string, arg ...string) EventHandler { return event("click", intent, arg) }

// Handlers returns the intent bindings on a node, keyed by event name.
func Handlers(v *VNode) map[string]EventHandler {
	if v == nil {
		return nil
	}
	var out map[string]EventHandler
	for _, value := range v.Props {
		h, ok := value.(EventHandler)
		if !ok {
			continue
		}
		if out == nil {
			out = make(map[string]EventHandler)
		}
		out[h.Event] = h
	}
	return out
}
