package views

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

const pageStyle = `body{font-family:system-ui,sans-serif;margin:0;background:#faf7f2;color:#1a1a1a}
main{max-width:960px;margin:0 auto;padding:2rem 1rem}
h1{font-size:1.5rem;margin:0 0 1.5rem}
table{width:100%;border-collapse:collapse}
th,td{text-align:left;padding:.5rem;border-bottom:1px solid #e5e0d8;vertical-align:top}
img.thumb{width:64px;border-radius:4px}
.msg{padding:.5rem 1rem;background:#e8f5e9;border:1px solid #a5d6a7;margin-bottom:1rem}
.err{color:#c62828}
button{cursor:pointer}`

// page writes the HTML shell around body.
func page(title string, body func(w *strings.Builder)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!doctype html><html lang="en"><head><meta charset="utf-8">`)
		b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		b.WriteString(`<title>` + templ.EscapeString(title) + `</title>`)
		b.WriteString(`<style>` + pageStyle + `</style></head><body><main>`)
		body(&b)
		b.WriteString(`</main></body></html>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// AdminLogin renders the password form.
func AdminLogin(showError bool, csrfToken string) templ.Component {
	return page("Admin login", func(b *strings.Builder) {
		b.WriteString(`<h1>Admin login</h1>`)
		if showError {
			b.WriteString(`<p class="err">Wrong password.</p>`)
		}
		b.WriteString(`<form method="post" action="/admin/login/">`)
		b.WriteString(`<input type="hidden" name="_csrf" value="` + templ.EscapeString(csrfToken) + `">`)
		b.WriteString(`<label>Password <input type="password" name="password" autofocus required></label> `)
		b.WriteString(`<button type="submit">Log in</button></form>`)
	})
}

// AdminDashboard lists generated invites, newest first.
func AdminDashboard(invites []Invite, message, csrfToken string) templ.Component {
	return page("Invites", func(b *strings.Builder) {
		b.WriteString(`<h1>Invites</h1>`)
		if message != "" {
			b.WriteString(`<p class="msg">` + templ.EscapeString(message) + `</p>`)
		}
		b.WriteString(`<form method="post" action="/admin/logout/">`)
		b.WriteString(`<input type="hidden" name="_csrf" value="` + templ.EscapeString(csrfToken) + `">`)
		b.WriteString(`<button type="submit">Log out</button></form>`)

		if len(invites) == 0 {
			b.WriteString(`<p>No invites generated yet.</p>`)
			return
		}
		b.WriteString(`<table><thead><tr><th></th><th>Invite</th><th>Theme</th><th>Size</th><th>Generated</th><th></th></tr></thead><tbody>`)
		for _, inv := range invites {
			b.WriteString(`<tr id="invite-` + templ.EscapeString(inv.ID) + `"><td>`)
			if inv.Durable && inv.ImageURL != "" {
				u := templ.EscapeString(string(templ.URL(inv.ImageURL)))
				b.WriteString(`<a href="` + u + `"><img class="thumb" src="` + u + `" alt=""></a>`)
			}
			b.WriteString(`</td><td>` + templ.EscapeString(Summary(inv)))
			if inv.Venue != "" {
				b.WriteString(`<br><small>` + templ.EscapeString(inv.Venue) + `</small>`)
			}
			b.WriteString(`</td><td>` + templ.EscapeString(inv.Theme) + `</td>`)
			b.WriteString(`<td>` + Dimensions(inv.Width, inv.Height) + `</td>`)
			b.WriteString(`<td>` + templ.EscapeString(FormatGenerated(inv.GeneratedAt)) + `</td>`)
			b.WriteString(`<td><button data-id="` + templ.EscapeString(PathEscape(inv.ID)) + `" onclick="deleteInvite(this)">Delete</button></td></tr>`)
		}
		b.WriteString(`</tbody></table>`)
		b.WriteString(`<script>function deleteInvite(btn){if(!confirm("Delete this invite?"))return;`)
		b.WriteString(`fetch("/admin/invites/"+btn.dataset.id+"/",{method:"DELETE",headers:{"X-CSRF-Token":` + jsString(csrfToken) + `}})`)
		b.WriteString(`.then(function(r){if(r.ok){location.href="/admin/?msg=deleted"}})}</script>`)
	})
}

// NotFound renders the 404 page.
func NotFound() templ.Component {
	return page("Not found", func(b *strings.Builder) {
		b.WriteString(`<h1>Not found</h1><p>There is no page here.</p>`)
	})
}

// ServerError renders the 500 page.
func ServerError() templ.Component {
	return page("Something went wrong", func(b *strings.Builder) {
		b.WriteString(`<h1>Something went wrong</h1><p>Please try again in a moment.</p>`)
	})
}

func jsString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, `<`, `\u003c`, `>`, `\u003e`, "\n", `\n`)
	return `"` + r.Replace(s) + `"`
}
