/*
Command registry-server serves the project NFT registry over HTTP.

Registry state lives in the store selected by --store. Exported project
bundles go to every --content-storage location; without one the project
endpoints answer 501.

Usage:

	registry-server --store pebble:///var/lib/registry \
	    --content-storage file:///var/lib/registry/bundles \
	    --content-storage ipfs://127.0.0.1:5001/

Flags:

	--listen-addr       address to listen on for API (default 127.0.0.1:8080)
	--metrics-addr      address to listen on for Prometheus metrics (default 127.0.0.1:8090)
	--store             memory://, pebble:///path, badger:///path or sqlite:///path.db
	--content-storage   content storage location, repeatable
	--pprof             enable pprof debug endpoint
	--drain-seconds     seconds to stay unready before shutting down
	--log-json, --log-debug, --log-uid, --log-service
*/
package main
