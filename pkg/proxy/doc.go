// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package proxy provides the HTTP front of the estimate gateway. It relays
// estimate registrations and list queries to Power Automate flows, answers
// CORS preflight requests for browser and Power Apps callers, and mounts the
// server-rendered pages.
package proxy
