// Package magicchat embeds the Magic card chat in a Go program without the
// HTTP server.
//
// The client talks to a hosted Weaviate cluster holding the Card class and
// keeps chat sessions in memory. Search results can be cached in process or
// in Redis/Valkey.
//
//	client, _ := magicchat.New(ctx,
//	    magicchat.WithWeaviate("my-cluster.weaviate.network", wvKey),
//	    magicchat.WithOpenAIKey(openaiKey),
//	    magicchat.WithMemoryCache(5*time.Minute),
//	)
//	defer client.Close()
//
//	id := client.NewSession()
//	reply, _ := client.Ask(ctx, id, magicchat.Input{
//	    Text: "Vampires cards with flying ability",
//	    Mode: "hybrid",
//	}, nil)
//	fmt.Println(reply.Content)
package magicchat
