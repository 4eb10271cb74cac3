// Package config loads runtime configuration for the NoteKeeper CLI.
//
// Sources, later wins: built-in defaults, an optional JSON file selected with
// -c or -config, then the -a (server URL) and -t (timeout seconds) flags.
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "request_timeout": "30s"
//	}
package config
