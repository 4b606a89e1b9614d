// Package pages renders the calculator shell served at "/".
package pages

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// Keypad is the calculator layout, row by row
var Keypad = [][]string{
	{"sin", "cos", "tan", "log"},
	{"π", "(", ")", "÷"},
	{"7", "8", "9", "×"},
	{"4", "5", "6", "-"},
	{"1", "2", "3", "+"},
	{"AC", "0", ".", "="},
}

// ShellProps is everything the shell needs on first paint
type ShellProps struct {
	Title    string
	Version  string
	Display  string
	History  string
	Unlocked bool
	Emojis   []string
}

// Shell renders the disguise page. While locked it is a plain scientific
// calculator; the chat surface is mounted client-side after unlocking.
func Shell(p ShellProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		b.WriteString(`<title>` + templ.EscapeString(p.Title) + `</title>`)
		b.WriteString(`<style>` + shellCSS + `</style></head>`)

		b.WriteString(`<body data-unlocked="`)
		if p.Unlocked {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
		b.WriteString(`" data-emojis="` + templ.EscapeString(strings.Join(p.Emojis, " ")) + `">`)

		b.WriteString(`<main id="calc"><section class="display">`)
		b.WriteString(`<div id="history">` + templ.EscapeString(p.History) + `</div>`)
		b.WriteString(`<div id="display">` + templ.EscapeString(p.Display) + `</div></section><section class="keys">`)
		for _, row := range Keypad {
			for _, key := range row {
				k := templ.EscapeString(key)
				b.WriteString(`<button data-key="` + k + `">` + k + `</button>`)
			}
		}
		b.WriteString(`</section></main>`)
		b.WriteString(`<main id="vault" hidden></main>`)
		b.WriteString(`<p class="version">Scientific Core ` + templ.EscapeString(p.Version) + `</p>`)
		b.WriteString(`<script>` + shellJS + `</script></body></html>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

const shellCSS = `
body{margin:0;min-height:100vh;display:flex;flex-direction:column;align-items:center;justify-content:center;background:#020617;color:#fff;font-family:system-ui,sans-serif}
#calc{width:100%;max-width:28rem;background:#0f172a;border-radius:1.5rem;overflow:hidden;border:1px solid #1e293b}
.display{padding:2rem;text-align:right;min-height:160px;display:flex;flex-direction:column;justify-content:flex-end;background:#1e293b80}
#history{color:#64748b;font-size:.875rem;height:1.5rem}
#display{font-size:3rem;font-weight:300;overflow:hidden;text-overflow:ellipsis}
.keys{padding:1.5rem;display:grid;grid-template-columns:repeat(4,1fr);gap:.75rem}
.keys button{height:4rem;border:0;border-radius:1rem;font-size:1.25rem;background:#33415580;color:#fff;cursor:pointer}
.version{margin-top:2rem;color:#475569;font-size:.75rem;text-transform:uppercase;letter-spacing:.1em}
#vault{width:100%;max-width:48rem}
#vault .msg{padding:.5rem;border-bottom:1px solid #1e293b}
`

const shellJS = `
const $ = (id) => document.getElementById(id);
async function press(key) {
  const res = await fetch('/api/calculator/press', {method: 'POST', headers: {'Content-Type': 'application/json'}, body: JSON.stringify({key})});
  if (!res.ok) return;
  const st = await res.json();
  $('display').textContent = st.display;
  $('history').textContent = st.history;
  if (st.unlocked) openVault();
}
document.querySelectorAll('[data-key]').forEach((b) => b.addEventListener('click', () => press(b.dataset.key)));
function render(state) {
  const vault = $('vault');
  vault.replaceChildren();
  for (const m of state.messages) {
    const div = document.createElement('div');
    div.className = 'msg';
    div.textContent = m.text;
    vault.appendChild(div);
  }
}
function openVault() {
  $('calc').hidden = true;
  $('vault').hidden = false;
  const proto = location.protocol === 'https:' ? 'wss:' : 'ws:';
  const sock = new WebSocket(proto + '//' + location.host + '/ws');
  sock.onmessage = (e) => {
    const ev = JSON.parse(e.data);
    if (ev.type === 'snapshot') render(ev.payload);
  };
}
if (document.body.dataset.unlocked === 'true') openVault();
`
