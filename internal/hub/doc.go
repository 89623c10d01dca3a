// Package hub maintains the registry of live websocket connections and
// implements the push side of the live channel. Each authenticated
// connection joins its user's group; broadcasts target a user and reach
// every connection in the group.
package hub
