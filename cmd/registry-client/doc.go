/*
Command registry-client calls a registry server.

Mutating commands sign the request body with --private-key (hex, or the
PRIVATE_KEY environment variable). Without a key a random one is generated,
which is only useful for read-only commands and for trying things out.

Usage:

	registry-client --private-key $ADMIN_KEY init
	registry-client --private-key $ADMIN_KEY mint --to 0x... --project-id proj-1 --content-pointer bafkrei...
	registry-client --private-key $OWNER_KEY transfer --to 0x... --token-id 1
	registry-client owner --token-id 1
	registry-client metadata --token-id 1
	registry-client version
	registry-client --private-key $ADMIN_KEY export --bundle project.json --mint-to 0x...
*/
package main
