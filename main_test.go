package main

import (
	"math/rand"

	"golang.org/x/time/rate"
)

// testCatalog returns a small but fully-populated catalog: every numeric
// attribute usable, values spread wide enough that range questions can
// always discriminate.
func testCatalog() []Coaster {
	return []Coaster{
		{ID: 1, Name: "Steel Vengeance", Park: "Cedar Point", Stats: CoasterStats{Height: 62.5, Speed: 119, Inversions: 4, Year: 2018, Length: 1755}},
		{ID: 2, Name: "Kingda Ka", Park: "Six Flags Great Adventure", Stats: CoasterStats{Height: 139, Speed: 206, Inversions: 1, Year: 2005, Length: 950}},
		{ID: 3, Name: "Fury 325", Park: "Carowinds", Stats: CoasterStats{Height: 99, Speed: 153, Inversions: 2, Year: 2015, Length: 2012}},
		{ID: 4, Name: "Boulder Dash", Park: "Lake Compounce", Stats: CoasterStats{Height: 19, Speed: 97, Inversions: 3, Year: 2000, Length: 1400}},
		{ID: 5, Name: "Smiler", Park: "Alton Towers", Stats: CoasterStats{Height: 30, Speed: 85, Inversions: 14, Year: 2013, Length: 1170}},
	}
}

func newTestRegistry() *Registry {
	return newRegistry(&Config{}, testCatalog(), rand.New(rand.NewSource(1)))
}

// newTestClient builds a connected client with no underlying websocket; the
// handlers only ever touch the send channel.
func newTestClient(r *Registry) *Client {
	c := &Client{
		send:    make(chan any, 256),
		limiter: rate.NewLimiter(rate.Inf, 1),
	}
	r.connect(c)
	return c
}

// drain empties a client's outbound buffer.
func drain(c *Client) []any {
	var msgs []any
	for {
		select {
		case msg := <-c.send:
			msgs = append(msgs, msg)
		default:
			return msgs
		}
	}
}

// lastOf returns the most recent message of type T in the client's buffer.
func lastOf[T any](c *Client) (T, bool) {
	var found T
	ok := false
	for _, msg := range drain(c) {
		if typed, is := msg.(T); is {
			found = typed
			ok = true
		}
	}
	return found, ok
}
