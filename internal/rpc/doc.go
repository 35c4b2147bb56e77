// Package rpc implements the MCP tool server that exposes QFS's six
// search/retrieval operations (spec §6) over MCP's stdio JSON-RPC
// transport: search, vsearch, query, get, multi_get, status.
package rpc
