// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/go-core-stack/estimate-gateway/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("estimate-gateway failed")
		os.Exit(1)
	}
}
