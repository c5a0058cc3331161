// Package bookrec embeds the book recommender in a Go program without the HTTP server.
//
// A Client loads an immutable catalog snapshot once and answers title resolution,
// nearest-neighbor and topic exploration queries from memory. It is safe for
// concurrent use.
//
//	client, err := bookrec.Open(ctx, "catalog.json",
//	    bookrec.WithAllowedTopics(bookrec.DefaultTopics...),
//	    bookrec.WithLogger(slog.Default()),
//	)
//	if err != nil {
//	    return err
//	}
//
//	rec, _ := client.Similar(ctx, "the hobbit", 3)
//	switch {
//	case rec.Recommended():
//	    for _, n := range rec.Neighbors {
//	        fmt.Println(n.Title, n.Similarity)
//	    }
//	default:
//	    fmt.Println("did you mean:", rec.Match.Candidates)
//	}
//
//	picks, _ := client.Explore(ctx, "science", 4.0, 3)
package bookrec
