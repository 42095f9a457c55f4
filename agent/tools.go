package agent

import (
	"context"

	"github.com/etnz/coinwatch"
	"github.com/etnz/coinwatch/renderer"
	"google.golang.org/genai"
)

// Func implements a simple Function.
type Func struct {
	Decl *genai.FunctionDeclaration
	Func func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

func (f *Func) Declaration() *genai.FunctionDeclaration { return f.Decl }
func (f *Func) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	return f.Func(ctx, id, args)
}

// Tools returns the functions reading app.
func Tools(app *coinwatch.App, currency string) []*Func {
	return []*Func{portfolioTool(app, currency), catalogTool(app, currency)}
}

func portfolioTool(app *coinwatch.App, currency string) *Func {
	const name = "portfolio"
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: name,
			Description: `portfolio renders the user's watchlist: the total value, the allocation per coin,
			and a page of the watched coins with their price, 24h change, holdings and value.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"page": {
						Type:        genai.TypeInteger,
						Description: "The page of the watchlist to render, starting at 1.",
					},
				},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown dashboard of the watchlist.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			page, err := intArg(args, "page", 1)
			if err != nil {
				return failure(id, name, err)
			}
			d := renderer.NewDashboard(app.Portfolio(), currency, page, 0)
			return success(id, name, renderer.RenderDashboard(d))
		},
	}
}

func catalogTool(app *coinwatch.App, currency string) *Func {
	const name = "catalog_search"
	const limit = 20
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: name,
			Description: `catalog_search looks up the coins available on the market, by name or symbol.
			Results are ordered by market capitalization and say whether the coin is already watched.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"term": {
						Type:        genai.TypeString,
						Description: "Part of the name or the symbol of the coin, case insensitive. Empty lists the largest coins.",
					},
				},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown table of the matching coins.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			term, err := stringArg(args, "term", "")
			if err != nil {
				return failure(id, name, err)
			}
			if err := app.EnsureCatalog(ctx); err != nil {
				return failure(id, name, err)
			}
			s := app.State()
			v := renderer.NewCatalogView(s.Catalog, s.Portfolio, term, limit, currency)
			return success(id, name, renderer.RenderCatalog(v))
		},
	}
}
