// Package config loads floaties.json.
//
//	{
//	  "name": "Floaties",
//	  "listen": ":8080",
//	  "locale": "en",
//	  "api": {
//	    "baseURL": "https://floaties-api.dudi.win/",
//	    "timeout": "10s",
//	    "condition": "2 == 2"
//	  },
//	  "auth": {
//	    "mode": "callback",
//	    "authorizeURL": "https://id.example/authorize",
//	    "loginTimeout": "2m"
//	  },
//	  "s3": {"region": "eu-central-1"},
//	  "log": {"level": "info", "json": false},
//	  "metrics": {"namespace": "floaties"}
//	}
//
// Every field is optional. Errors carry F1xx codes from internal/errors and,
// for malformed JSON, the line and column that failed to parse.
package config
