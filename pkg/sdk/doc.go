// Package searchd embeds the searchd multi-path retrieval pipeline in a Go
// program, backed by Redis Stack (RediSearch).
//
// The client runs the same keyword, vector and hot recall paths, fusion and
// tenant sort-rule rerank as the HTTP service, without the HTTP hop:
//
//	client, _ := searchd.New(ctx,
//	    searchd.WithRedis("localhost:6379", ""),
//	    searchd.WithIndexPrefix("products"),
//	)
//	defer client.Close()
//
//	resp, _ := client.Search(ctx, searchd.SearchRequest{
//	    Query:   "wireless headphones",
//	    AppKey:  "shop_a",
//	    Filters: map[string]string{"category": "audio"},
//	})
//
// Sort rules are shared with the service through Redis:
//
//	_ = client.Rules().Put(ctx, searchd.SortRule{
//	    AppKey:  "shop_a",
//	    Factors: []searchd.Factor{{Field: "sales", Weight: 0.4, Mode: searchd.ModeLog}},
//	})
package searchd
