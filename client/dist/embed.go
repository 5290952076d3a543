// Package clientdist embeds the thin client served to browsers.
package clientdist

import _ "embed"

// AdvisorJS is the live client script. The app serves it under
// /_advisor/ with a content-hashed name resolved at boot.
//
//go:embed advisor.js
var AdvisorJS []byte

// Name is the unhashed file name of the client script.
const Name = "advisor.js"
