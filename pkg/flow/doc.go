// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package flow calls Power Automate HTTP-trigger flows. It merges caller
// query parameters onto the configured trigger URL, attaches the flow access
// key, and decodes the JSON answer into an opaque value for the gateway to
// normalize.
package flow
