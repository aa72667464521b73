package vdom

import "strings"

// attr creates an Attr with the given key and value.
func attr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// Identity attributes

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", id) }

// Class sets the class attribute, joining multiple classes with spaces.
// Empty class names are skipped.
func Class(classes ...string) Attr {
	kept := classes[:0:0]
	for _, c := range classes {
		if c != "" {
			kept = append(kept, c)
		}
	}
	return attr("class", strings.Join(kept, " "))
}

// Data creates a data-* attribute.
// Example: Data("id", "123") → data-id="123"
func Data(key, value string) Attr { return attr("data-"+key, value) }

// Accessibility attributes

// Role sets the role attribute.
func Role(role string) Attr { return attr("role", role) }

// AriaLabel sets the aria-label attribute.
func AriaLabel(label string) Attr { return attr("aria-label", label) }

// AriaExpanded sets the aria-expanded attribute.
func AriaExpanded(expanded bool) Attr {
	if expanded {
		return attr("aria-expanded", "true")
	}
	return attr("aria-expanded", "false")
}

// AriaCurrent sets the aria-current attribute.
func AriaCurrent(value string) Attr { return attr("aria-current", value) }

// AriaBusy sets the aria-busy attribute.
func AriaBusy(busy bool) Attr { return attr("aria-busy", busy) }

// AriaLive sets the aria-live attribute.
func AriaLive(mode string) Attr { return attr("aria-live", mode) }

// Language attributes

// Lang sets the lang attribute.
func Lang(lang string) Attr { return attr("lang", lang) }

// Link attributes

// Href sets the href attribute.
func Href(url string) Attr { return attr("href", url) }

// Form attributes

// Type sets the type attribute.
func Type(t string) Attr { return attr("type", t) }

// Disabled sets the disabled attribute.
func Disabled() Attr { return attr("disabled", true) }

// Name sets the name attribute.
func Name(name string) Attr { return attr("name", name) }

// Content sets the content attribute.
func Content(content string) Attr { return attr("content", content) }

// Charset sets the charset attribute.
func Charset(charset string) Attr { return attr("charset", charset) }
