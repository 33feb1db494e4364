// Package quoterag embeds the currency quote assistant in a Go program
// without running the HTTP service.
//
// The client owns an in-memory embedding index of historical quotes, a tool
// registry with live quote sources and an optional analysis generator, and
// the orchestrator that answers questions with them.
//
//	client, _ := quoterag.New(ctx,
//	    quoterag.WithEmbedder(myEmbedder),
//	    quoterag.WithGenerator(myLLM),
//	    quoterag.WithSnapshot("data/index.qrag"),
//	)
//	_, _ = client.Preload(ctx) // seed quotes, skipped when already indexed
//	report, _ := client.Ask(ctx, "¿A cuánto estaba el euro el 09/08/2025?")
//
// Without WithQuoteSource the client asks Cambios Chaco for live quotes,
// first through its JSON API and then through its PDF rate board.
package quoterag
