// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

/*
Package influx proxies parameterized Flux queries to an InfluxDB v2 query
endpoint.

A QuerySpec is query text plus the bindings that back its free "v.*"
variables. The bindings travel as an "extern" Flux AST: a File holding one
option statement that assigns an object literal to v.

	spec := influx.QuerySpec{
	    Name: "line",
	    Text: `from(bucket: v.bucket) |> range(start: v.timeRangeStart)`,
	    Bindings: []influx.Binding{
	        influx.StringBinding("bucket", "telegraf"),
	        influx.NegativeDurationBinding("timeRangeStart", 1, "h"),
	    },
	}
	resp, err := client.Query(ctx, spec)

The client sends the server-held token and never interprets the response.
*/
package influx
