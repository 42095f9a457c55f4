package agent

import (
	"github.com/etnz/coinwatch"
	"github.com/etnz/coinwatch/docs"
	"google.golang.org/genai"
)

const model = "gemini-2.5-pro"

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func instruction(text string) *genai.Content {
	return &genai.Content{Parts: []*genai.Part{{Text: text}}}
}

func newFacilitator(experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: instruction(`
			As a facilitator you are in charge of the conversation and solving the user's request.

			Learn about the expert's skill that you can get from the Tools to ask them questions.
			They are at your service and keep the context of your previous questions.

			The user is here to get news or information about the crypto currencies in their watchlist.
			They assume you know the coins they watch: ask the Analyst first.

			Devise a plan of questions to ask to each expert and come up with the best response to the user's request.
		`),
		},
		Library: NewLibrary(experts),
	}
}

// NewTrader returns an expert grounded on Google Search.
func NewTrader() *Expert {
	return &Expert{
		Name: "Trader",
		Description: `This is an expert crypto trader,
		aware of the exchanges, the tokens and the latest news about them.
		Ask the Trader whenever you need recent or grounding information.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: instruction(`
			You are an expert in crypto currencies trading, you can search and find about anything related to
			tokens, exchanges, and markets. You leverage Google Search to ground your assertions.
			You can get the latest news too, and you know how to relate them to the user's request.
			`),
		},
	}
}

// NewAnalyst returns an expert reading the watchlist of app. Prices are
// labelled in currency.
func NewAnalyst(app *coinwatch.App, currency string) *Expert {
	lib := Tools(app, currency)
	return &Expert{
		Name: "Analyst",
		Description: `This is the Analyst. They read the user's watchlist: the coins watched, their price,
		the holdings, the value and the allocation of the portfolio. They can also search the market catalog.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: instruction(`
			You are an analyst in charge of the user's crypto watchlist.
			Use the Tools to extract relevant information about:
			  - the watched coins and their holdings
			  - the portfolio total value and allocation
			  - the coins available on the market
			You are part of a team of experts. Pardon their approximate language and figure out what they meant.

			Below is the user documentation of the watchlist:

			` + must(docs.GetTopic("watchlist"))),
		},
		Library: NewLibrary(lib),
	}
}
