// cmd/main.go
package main

import (
	"oauth2-token-store/app"
)

// @title           OAuth2 Token Store API
// @version         1.0
// @description     Stores fingerprints of issued OAuth2 tokens and answers lookup, revocation and cleanup requests.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT

// @host      localhost:3000
// @BasePath  /
func main() {
	app.Run()
}
