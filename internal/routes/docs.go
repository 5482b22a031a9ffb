package routes

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/huskymarket/HuskyMarketBack/internal/config"
)

const docsIndexHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{ .Title }}</title>
  <style>
    :root {
      color-scheme: light;
      --bg: #f6f7f4;
      --text: #132019;
      --muted: #536258;
      --accent: #4b2e83;
      --border: #d8ddd6;
    }
    * { box-sizing: border-box; }
    body {
      margin: 0;
      font-family: Georgia, "Times New Roman", serif;
      color: var(--text);
      background: var(--bg);
    }
    main { max-width: 960px; margin: 0 auto; padding: 48px 20px 64px; }
    h1 { margin: 0 0 8px; }
    p.lede { margin: 0 0 28px; color: var(--muted); }
    section {
      background: #fff;
      border: 1px solid var(--border);
      border-radius: 14px;
      padding: 20px 24px;
      margin-bottom: 18px;
    }
    h2 {
      margin: 0 0 10px;
      font-size: 0.92rem;
      text-transform: uppercase;
      letter-spacing: 0.08em;
      color: var(--muted);
    }
    table { width: 100%; border-collapse: collapse; }
    td { padding: 6px 10px 6px 0; vertical-align: top; }
    td.method { width: 72px; font-weight: 700; color: var(--accent); }
    code { font-size: 0.94rem; }
    td.note { color: var(--muted); }
  </style>
</head>
<body>
  <main>
    <h1>{{ .Title }}</h1>
    <p class="lede">Endpoint index generated {{ .LoadedAt }}. All /api/v1 routes require a Bearer token.</p>
    {{ range .Groups }}
    <section>
      <h2>{{ .Name }}</h2>
      <table>
        {{ range .Endpoints }}
        <tr>
          <td class="method">{{ .Method }}</td>
          <td><code>{{ .Path }}</code></td>
          <td class="note">{{ .Note }}</td>
        </tr>
        {{ end }}
      </table>
    </section>
    {{ end }}
  </main>
</body>
</html>
`

type docsEndpoint struct {
	Method string
	Path   string
	Note   string
}

type docsGroup struct {
	Name      string
	Endpoints []docsEndpoint
}

type docsPageData struct {
	Title    string
	LoadedAt string
	Groups   []docsGroup
}

var docsGroups = []docsGroup{
	{
		Name: "Auth",
		Endpoints: []docsEndpoint{
			{"POST", "/api/auth/register", "create account, returns token + user"},
			{"POST", "/api/auth/login", "returns token + user"},
			{"GET", "/api/auth/me", "current user"},
		},
	},
	{
		Name: "Profile",
		Endpoints: []docsEndpoint{
			{"GET", "/api/v1/users/profile", ""},
			{"PUT", "/api/v1/users/profile", "partial update: display_name, campus_id"},
			{"POST", "/api/v1/users/profile/avatar", "multipart, field \"avatar\""},
			{"GET", "/api/v1/users/listings", "caller's listings, any status"},
		},
	},
	{
		Name: "Items",
		Endpoints: []docsEndpoint{
			{"GET", "/api/v1/items", "q, category, condition, location, min_price, max_price, status, sort, page, limit"},
			{"POST", "/api/v1/items", "multipart, up to 6 \"images\" files"},
			{"GET", "/api/v1/items/:id", "detail with images and seller"},
			{"PUT", "/api/v1/items/:id", "owner only, partial"},
			{"DELETE", "/api/v1/items/:id", "owner only"},
			{"PUT", "/api/v1/items/:id/status", "available or sold"},
			{"GET", "/api/v1/items/:id/related", "ranked similar listings"},
			{"POST", "/api/v1/items/:id/images", "multipart, field \"image\""},
			{"DELETE", "/api/v1/items/:id/images/:imageID", ""},
		},
	},
	{
		Name: "Offers",
		Endpoints: []docsEndpoint{
			{"POST", "/api/v1/items/:id/offers", "buyer places offer"},
			{"GET", "/api/v1/items/:id/offers", "seller views offers"},
			{"GET", "/api/v1/offers", "caller's offers as buyer"},
			{"PUT", "/api/v1/offers/:id/status", "accept, decline, or withdraw"},
		},
	},
	{
		Name: "Chat",
		Endpoints: []docsEndpoint{
			{"GET", "/api/v1/conversations", "summaries with unread counts"},
			{"POST", "/api/v1/conversations", "open thread for an item"},
			{"GET", "/api/v1/conversations/:id/messages", "paginated, marks fetched as read"},
			{"POST", "/api/v1/conversations/:id/messages", "send over REST"},
			{"GET", "/api/v1/ws?token=", "websocket upgrade"},
		},
	},
}

func registerDocsRoutes(app fiber.Router, cfg *config.Config) error {
	if !cfg.DocsEnabled() {
		return nil
	}

	indexTemplate, err := template.New("docs-index").Parse(docsIndexHTML)
	if err != nil {
		return fmt.Errorf("parse docs template: %w", err)
	}

	pageData := docsPageData{
		Title:    "HuskyMarket API Docs",
		LoadedAt: time.Now().UTC().Format(time.RFC3339),
		Groups:   docsGroups,
	}

	indexHandler := func(c *fiber.Ctx) error {
		applyDocsBaseHeaders(c, fiber.MIMETextHTMLCharsetUTF8)
		c.Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'; base-uri 'none'; form-action 'none'; frame-ancestors 'none'")

		var body bytes.Buffer
		if err := indexTemplate.Execute(&body, pageData); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to render api docs")
		}

		return c.Status(fiber.StatusOK).Send(body.Bytes())
	}

	app.Get("/docs", indexHandler)
	app.Get("/docs/", indexHandler)

	return nil
}

func applyDocsBaseHeaders(c *fiber.Ctx, contentType string) {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderCacheControl, "no-store, max-age=0")
	c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
	c.Set(fiber.HeaderXFrameOptions, "DENY")
	c.Set("Referrer-Policy", "no-referrer")
	c.Set("X-Robots-Tag", "noindex, nofollow")
}
