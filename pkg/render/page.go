package render

import (
	"io"

	"github.com/floaties-dev/floaties/pkg/vdom"
)

// PageData contains all data needed to render a complete HTML page.
type PageData struct {
	// Body is the root VNode for the page content
	Body *vdom.VNode

	// Title is the page title
	Title string

	// Lang is the language attribute for the html element.
	// Defaults to "en" if not specified
	Lang string

	// Styles contains inline CSS styles
	Styles []string

	// SocketPath is the websocket endpoint the client script connects to.
	// The client script is omitted when empty.
	SocketPath string
}

// AppRootID is the id of the element that render frames replace.
const AppRootID = "app"

// RenderPage renders a complete HTML document to the given writer.
func (r *Renderer) RenderPage(w io.Writer, page PageData) error {
	if _, err := io.WriteString(w, "<!DOCTYPE html>\n"); err != nil {
		return err
	}
	if err := r.RenderToWriter(w, Document(page)); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Document builds the html element for page.
func Document(page PageData) *vdom.VNode {
	lang := page.Lang
	if lang == "" {
		lang = "en"
	}

	var script *vdom.VNode
	if page.SocketPath != "" {
		script = vdom.CustomElement("script", vdom.Data("socket", page.SocketPath), vdom.Raw(clientScript))
	}

	return vdom.Html(
		vdom.Lang(lang),
		head(page),
		vdom.Body(
			vdom.Div(vdom.ID(AppRootID), page.Body),
			script,
		),
	)
}

func head(page PageData) *vdom.VNode {
	var title *vdom.VNode
	if page.Title != "" {
		title = vdom.Title(page.Title)
	}
	styles := vdom.Range(page.Styles, func(style string, _ int) *vdom.VNode {
		return vdom.CustomElement("style", vdom.Raw(style))
	})
	return vdom.Head(
		vdom.Meta(vdom.Charset("utf-8")),
		vdom.Meta(vdom.Name("viewport"), vdom.Content("width=device-width, initial-scale=1")),
		title,
		styles,
	)
}

// clientScript is the browser side of the intent protocol. It forwards
// data-on-click intents and history navigation to the
// socket, swaps #app with every render frame it receives, and opens the
// login window when a frame asks for it.
const clientScript = `(function(){
var s=document.currentScript,p=s.getAttribute("data-socket");
var u=(location.protocol==="https:"?"wss://":"ws://")+location.host+p+"?path="+encodeURIComponent(location.pathname+location.search);
var ws=new WebSocket(u),app=document.getElementById("app");
function send(m){if(ws.readyState===1)ws.send(JSON.stringify(m));}
ws.onmessage=function(e){var f=JSON.parse(e.data);
if(f.open){window.open(f.open,"floaties-login","width=480,height=640");return;}
if(f.html!==undefined)app.innerHTML=f.html;
if(f.title)document.title=f.title;
if(f.path&&f.path!==location.pathname+location.search){if(f.replace)history.replaceState(null,"",f.path);else history.pushState(null,"",f.path);}};
function bind(ev){document.addEventListener(ev,function(e){var t=e.target.closest("[data-on-"+ev+"]");
if(!t)return;e.preventDefault();send({type:t.getAttribute("data-on-"+ev),arg:t.getAttribute("data-arg")||""});});}
bind("click");
window.addEventListener("popstate",function(){send({type:"navigate",arg:location.pathname+location.search,replace:true});});
})();`
